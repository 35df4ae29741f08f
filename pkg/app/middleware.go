package app

import (
	"net/http"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/sirupsen/logrus"

	"github.com/code-payments/affiliate-market/pkg/metrics"
)

type statusRecorder struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
}

func (r *statusRecorder) WriteHeader(statusCode int) {
	if r.wroteHeader {
		return
	}
	r.statusCode = statusCode
	r.wroteHeader = true
	r.ResponseWriter.WriteHeader(statusCode)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if !r.wroteHeader {
		r.WriteHeader(http.StatusOK)
	}
	return r.ResponseWriter.Write(b)
}

// instrument runs the handler within a New Relic transaction, when there's a
// metrics provider, and recovers from panics. The New Relic application is
// injected into the request context for custom events and metrics in
// downstream code.
func instrument(nr *newrelic.Application, path string, handler http.HandlerFunc) http.HandlerFunc {
	log := logrus.StandardLogger().WithFields(logrus.Fields{
		"type": "app/http",
		"path": path,
	})

	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		recorder := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}
		ctx := metrics.NewContext(r.Context(), nr)

		var rw http.ResponseWriter = recorder
		if nr != nil {
			txn := nr.StartTransaction(r.Method + " " + path)
			defer txn.End()

			txn.SetWebRequestHTTP(r)
			rw = txn.SetWebResponse(recorder)
			ctx = newrelic.NewContext(ctx, txn)
		}

		defer func() {
			if p := recover(); p != nil {
				log.WithField("panic", p).Error("panic handling http request")
				if !recorder.wroteHeader {
					http.Error(rw, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				}
			}

			log.WithFields(logrus.Fields{
				"method":      r.Method,
				"status_code": recorder.statusCode,
				"duration":    time.Since(start),
			}).Debug("handled http request")
		}()

		handler(rw, r.WithContext(ctx))
	}
}
