// Package api exposes the face over a small HTTPS REST api protected by an
// api key.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"runtime/debug"
	"strconv"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/jypelle/sunface/apimodel"
	"github.com/jypelle/sunface/internal/srv/config"
	"github.com/jypelle/sunface/internal/srv/event"
	"github.com/jypelle/sunface/internal/tool"
	"github.com/sirupsen/logrus"
)

const ApiKeyHeader = "x-api-key"

type Api struct {
	eventChannel chan event.ApiEvent

	router    *mux.Router
	apiRouter *mux.Router
	server    *http.Server

	config *config.ServerConfig
}

func NewApi(config *config.ServerConfig) *Api {
	api := Api{
		config:       config,
		eventChannel: make(chan event.ApiEvent),
	}

	api.router = mux.NewRouter().StrictSlash(false)

	// API Routes
	api.apiRouter = api.router.PathPrefix("/api").Subrouter()
	api.apiRouter.NotFoundHandler = http.HandlerFunc(ErrorNotFoundAction)
	api.apiRouter.MethodNotAllowedHandler = http.HandlerFunc(ErrorMethodNotAllowedAction)

	// Auth middleware
	api.apiRouter.Use(
		func(handler http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				defer func() {
					if rec := recover(); rec != nil {
						logrus.Warningf("recovered from panic : [%v] - stack trace : \n [%s]", rec, debug.Stack())
						apimodel.NewErrorMessage(http.StatusInternalServerError, fmt.Sprintf("%v", rec)).SendError(w)
					}
				}()

				// Check API Key
				if r.Header.Get(ApiKeyHeader) != config.ApiParam.ApiKey {
					ErrorStatusAction(w, r, http.StatusForbidden)
					return
				}

				logrus.Debugf("PATH: %s %s", r.Host, r.URL.Path)

				handler.ServeHTTP(w, r)
			})
		})

	// Create server check endpoint
	api.apiRouter.HandleFunc("/is_alive",
		func(w http.ResponseWriter, r *http.Request) {
			ErrorStatusAction(w, r, http.StatusOK)
		}).Methods("GET")
	api.apiRouter.HandleFunc("/status",
		func(w http.ResponseWriter, r *http.Request) {
			api.dispatch(w, r, event.ApiEventStatusData{})
		}).Methods("GET")
	api.apiRouter.HandleFunc("/mode/{mode}",
		func(w http.ResponseWriter, r *http.Request) {
			var ambient bool
			switch mux.Vars(r)["mode"] {
			case "ambient":
				ambient = true
			case "interactive":
				ambient = false
			default:
				apimodel.WrongParametersErrorMessage.SendError(w)
				return
			}
			api.dispatch(w, r, event.ApiEventModeData{Ambient: ambient})
		}).Methods("POST")
	api.apiRouter.HandleFunc("/visibility/{visibility}",
		func(w http.ResponseWriter, r *http.Request) {
			var visible bool
			switch mux.Vars(r)["visibility"] {
			case "visible":
				visible = true
			case "hidden":
				visible = false
			default:
				apimodel.WrongParametersErrorMessage.SendError(w)
				return
			}
			api.dispatch(w, r, event.ApiEventVisibilityData{Visible: visible})
		}).Methods("POST")
	api.apiRouter.HandleFunc("/weather/request",
		func(w http.ResponseWriter, r *http.Request) {
			api.dispatch(w, r, event.ApiEventWeatherRequestData{})
		}).Methods("POST")

	// Tell the browser that it's OK for JS to communicate with the server
	headersOk := handlers.AllowedHeaders([]string{"Authorization", ApiKeyHeader})
	originsOk := handlers.AllowedOrigins([]string{"*"})
	methodsOk := handlers.AllowedMethods([]string{"GET", "POST", "OPTIONS"})

	api.server = &http.Server{
		Addr:         ":" + strconv.FormatInt(config.ApiParam.SslPort, 10),
		Handler:      handlers.CompressHandler(handlers.CORS(originsOk, headersOk, methodsOk)(api.router)),
		ReadTimeout:  time.Second * 30,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 240,
	}

	return &api
}

// dispatch hands the request to the event loop and writes its answer.
func (d *Api) dispatch(w http.ResponseWriter, r *http.Request, data interface{}) {
	result := make(chan event.ApiResult, 1)

	select {
	case d.eventChannel <- event.ApiEvent{Result: result, Data: data}:
	case <-r.Context().Done():
		apimodel.FaceUnavailableErrorMessage.SendError(w)
		return
	}

	select {
	case res := <-result:
		if res.Err != nil {
			apimodel.NewErrorMessage(http.StatusForbidden, res.Err.Error()).SendError(w)
			return
		}
		if res.Body == nil {
			ErrorStatusAction(w, r, http.StatusOK)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(res.Body); err != nil {
			logrus.Warnf("Unable to encode %T: %v", res.Body, err)
		}
	case <-r.Context().Done():
		apimodel.FaceUnavailableErrorMessage.SendError(w)
	}
}

func (d *Api) Start() {
	if !d.config.ApiParam.Enabled {
		logrus.Infof("Api device disabled")
		return
	}
	logrus.Infof("Start api device")

	_, err := tool.EnsureTlsCertificate(
		"sunface",
		"Sunface Server",
		d.config.GetCompleteKeyFilename(),
		d.config.GetCompleteCertFilename(),
		[]string{})
	if err != nil {
		logrus.Fatalf("%v\n", err)
	}

	// Launch https server
	go func() {
		err := d.server.ListenAndServeTLS(d.config.GetCompleteCertFilename(), d.config.GetCompleteKeyFilename())
		if err != nil && err != http.ErrServerClosed {
			logrus.Error(err)
		}
	}()
}

func (d *Api) StopSendingEvent() {
	if !d.config.ApiParam.Enabled {
		return
	}
	logrus.Infof("Stop api device")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := d.server.Shutdown(ctx); err != nil {
		logrus.Warnf("Unable to shutdown api server: %v", err)
	}
}

func (d *Api) EventChannel() chan event.ApiEvent {
	return d.eventChannel
}

// Handler serves the api routes without TLS.
func (d *Api) Handler() http.Handler {
	return d.server.Handler
}

func ErrorNotFoundAction(w http.ResponseWriter, r *http.Request) {
	ErrorStatusAction(w, r, http.StatusNotFound)
}

func ErrorMethodNotAllowedAction(w http.ResponseWriter, r *http.Request) {
	ErrorStatusAction(w, r, http.StatusMethodNotAllowed)
}

func ErrorStatusAction(w http.ResponseWriter, r *http.Request, status int) {
	apimodel.NewErrorMessage(status, "").SendError(w)
}
