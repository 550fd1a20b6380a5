package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

type coded struct{}

func (coded) Error() string     { return "coded" }
func (coded) EnvelopeCode() int { return 400 }

func TestCodeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 200},
		{"bad request", BadRequest("bad", nil), 400},
		{"not found", NotFound("appointment", nil), 404},
		{"wrapped app error", fmt.Errorf("failed to load: %w", NotFound("record", nil)), 404},
		{"coder", fmt.Errorf("wrap: %w", coded{}), 400},
		{"plain", stderrors.New("boom"), 500},
		{"unauthorized", Unauthorized(nil), 401},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CodeOf(tt.err))
		})
	}
}

func TestMessageOf(t *testing.T) {
	assert.Equal(t, "appointment not found", MessageOf(NotFound("appointment", stderrors.New("missing"))))
	assert.Equal(t, "internal server error", MessageOf(stderrors.New("dial tcp: refused")))
	assert.Equal(t, "coded", MessageOf(coded{}))
}

func TestFromEnvelope(t *testing.T) {
	err := FromEnvelope(0, "")
	assert.Equal(t, CodeInternal, err.Code)
	assert.Equal(t, "failed", err.Message)

	err = FromEnvelope(404, "Prescription not found")
	assert.Equal(t, 404, CodeOf(err))
}
