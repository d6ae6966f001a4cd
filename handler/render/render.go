package render

import (
	"encoding/json"
	"errors"
	"net/http"

	"huski/core"
	"huski/handler/codes"

	"github.com/sirupsen/logrus"
	"github.com/twitchtv/twirp"
)

// H map
type H map[string]interface{}

// JSON render with json
func JSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.WithError(err).Errorln("render.JSON")
	}
}

// Text render with text
func Text(w http.ResponseWriter, t string) {
	w.Header().Set("Content-Type", "application/text")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(t)); err != nil {
		logrus.WithError(err).Errorln("render.Text")
	}
}

// Error ledger error codes are 400 with the code, twirp errors keep their status,
// anything else is a 500
func Error(w http.ResponseWriter, err error) {
	var code core.ErrorCode
	if errors.As(err, &code) {
		write(w, http.StatusBadRequest, int(code), code.Message())
		return
	}

	var twerr twirp.Error
	if errors.As(err, &twerr) {
		status := twirp.ServerHTTPStatusFromErrorCode(twerr.Code())
		write(w, status, codes.Get(twerr.Code()), twerr.Msg())
		return
	}

	logrus.WithError(err).Errorln("internal error")
	write(w, http.StatusInternalServerError, int(core.ErrUnknown), http.StatusText(http.StatusInternalServerError))
}

func write(w http.ResponseWriter, status, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(errorResponse{Code: code, Msg: msg}); err != nil {
		logrus.WithError(err).Errorln("render.Error")
	}
}

// BadRequest bad request error
func BadRequest(w http.ResponseWriter, err error) {
	Error(w, twirp.InvalidArgumentError("request", err.Error()))
}

// NotFoundRequest not found request error
func NotFoundRequest(w http.ResponseWriter, err error) {
	Error(w, twirp.NotFoundError(err.Error()))
}
