package errutil_test

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/bonk/pkg/utils/errutil"
	"github.com/secmon-lab/bonk/pkg/utils/logging"
)

func TestHandle(t *testing.T) {
	var buf bytes.Buffer
	ctx := logging.With(context.Background(), slog.New(slog.NewJSONHandler(&buf, nil)))

	t.Run("nil error is passed through", func(t *testing.T) {
		gt.NoError(t, errutil.Handle(ctx, nil, "nothing"))
		gt.Number(t, buf.Len()).Equal(0)
	})

	t.Run("goerr values are logged", func(t *testing.T) {
		buf.Reset()
		err := goerr.New("boom", goerr.V("room_id", "R1"))
		gt.Value(t, errutil.Handle(ctx, err, "handler failed")).Equal(error(err))
		gt.String(t, buf.String()).Contains("handler failed")
		gt.String(t, buf.String()).Contains("R1")
	})
}

func TestHandleHTTP(t *testing.T) {
	w := httptest.NewRecorder()
	errutil.HandleHTTP(context.Background(), w, goerr.New("bad request"), http.StatusBadRequest)
	gt.Number(t, w.Code).Equal(http.StatusBadRequest)
	gt.String(t, w.Body.String()).Contains("bad request")
}
