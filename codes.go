package aclauth

import "sync"

// codeRecorder accumulates error codes in the order operations failed during
// one request. Translation happens lazily when the codes are read.
type codeRecorder struct {
	mu    sync.Mutex
	codes []string
}

func (r *codeRecorder) add(code string) {
	if r == nil || code == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.codes = append(r.codes, code)
}

func (r *codeRecorder) snapshot() []string {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.codes))
	copy(out, r.codes)
	return out
}

// ErrorCodes returns the raw error codes recorded on this request-scoped
// service, oldest first.
func (s *Service) ErrorCodes() []string {
	return s.codes.snapshot()
}

// Errors returns the recorded codes translated through the configured
// catalog. Codes without a catalog entry come back wrapped as "##code##",
// which keeps missing translations visible instead of silently blank.
func (s *Service) Errors() []string {
	codes := s.codes.snapshot()
	if len(codes) == 0 {
		return nil
	}

	out := make([]string, len(codes))
	for i, code := range codes {
		if msg, ok := s.config.Translations[code]; ok && msg != "" {
			out[i] = msg
			continue
		}
		out[i] = "##" + code + "##"
	}
	return out
}
