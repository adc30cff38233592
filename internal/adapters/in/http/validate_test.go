package http

import (
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"fleet/api"
	"fleet/internal/metrics"
	"fleet/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAssignmentRequest_TTL(t *testing.T) {
	tests := map[string]struct {
		req     CreateAssignmentRequest
		want    time.Duration
		wantErr error
	}{
		"absent":           {req: CreateAssignmentRequest{}, want: 0},
		"seconds":          {req: CreateAssignmentRequest{TTLSeconds: 90}, want: 90 * time.Second},
		"largest seconds":  {req: CreateAssignmentRequest{TTLSeconds: maxTTLSeconds}, want: time.Duration(maxTTLSeconds) * time.Second},
		"seconds overflow": {req: CreateAssignmentRequest{TTLSeconds: maxTTLSeconds + 1}, wantErr: errs.ErrValueIsOutOfRange},
		"wraps to small":   {req: CreateAssignmentRequest{TTLSeconds: 18446744074}, wantErr: errs.ErrValueIsOutOfRange},
		"negative seconds": {req: CreateAssignmentRequest{TTLSeconds: -1}, wantErr: errs.ErrValueIsOutOfRange},
		"milliseconds":     {req: CreateAssignmentRequest{TTL: "250ms"}, want: 250 * time.Millisecond},
		"zero duration":    {req: CreateAssignmentRequest{TTL: "0s"}, wantErr: errs.ErrValueIsOutOfRange},
		"negative":         {req: CreateAssignmentRequest{TTL: "-5m"}, wantErr: errs.ErrValueIsOutOfRange},
		"duration overflow": {
			req:     CreateAssignmentRequest{TTL: "3000000h"},
			wantErr: errs.ErrValueIsInvalid,
		},
		"not a duration": {req: CreateAssignmentRequest{TTL: "soon"}, wantErr: errs.ErrValueIsInvalid},
		"both":           {req: CreateAssignmentRequest{TTL: "1m", TTLSeconds: 60}, wantErr: errs.ErrValueIsInvalid},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := tt.req.ttl()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOpenAPIPath(t *testing.T) {
	assert.Equal(t, "/loads", openAPIPath("/api/v1/loads"))
	assert.Equal(t, "/loads/{id}/stage", openAPIPath("/api/v1/loads/:id/stage"))
	assert.Equal(t, "/resources/{id}/availability", openAPIPath("/api/v1/resources/:id/availability"))
	assert.Equal(t, "/health", openAPIPath("/health"))
}

func TestNewRouter_EveryAPIRouteIsDocumented(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	e, err := NewRouter(NewServer(Handlers{}, logger), metrics.New(), logger)
	require.NoError(t, err)

	doc, err := api.Load()
	require.NoError(t, err)

	documented := 0
	for _, r := range e.Routes() {
		if !strings.HasPrefix(r.Path, api.BasePath+"/") || strings.Contains(r.Path, "*") {
			continue
		}
		item := doc.Paths.Value(openAPIPath(r.Path))
		require.NotNil(t, item, r.Path)
		assert.NotNil(t, item.GetOperation(r.Method), "%s %s", r.Method, r.Path)
		documented++
	}
	assert.Equal(t, 12, documented)
}
