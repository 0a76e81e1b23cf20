package streaming

import "time"

// Status drains the stream's pending status event. On a transmit stream a
// recorded underrun is reported as ErrUnderflow exactly once, then cleared.
// Overruns are reported through the receive path itself, not here, since
// they are tied to data already being pulled.
//
// The timeout is accepted for interface symmetry; no waiting is performed.
func (s *Stream) Status(_ time.Duration) (Meta, error) {
	if s.underrun {
		s.underrun = false
		return Meta{}, ErrUnderflow
	}
	return Meta{}, nil
}
