package srv

import (
	"os"
	"os/exec"
	"time"

	"github.com/jypelle/sunface/internal/face"
	"github.com/jypelle/sunface/internal/face/datasync"
	"github.com/jypelle/sunface/internal/face/scheduler"
	"github.com/jypelle/sunface/internal/images"
	"github.com/jypelle/sunface/internal/srv/api"
	"github.com/jypelle/sunface/internal/srv/config"
	"github.com/jypelle/sunface/internal/srv/device"
	"github.com/jypelle/sunface/internal/srv/event"
	"github.com/jypelle/sunface/internal/version"
	"github.com/sirupsen/logrus"
)

type ServerApp struct {
	*config.ServerConfig
	displayDevice *device.Display
	clockDevice   *device.Clock
	buttonsDevice *device.Buttons
	apiDevice     *api.Api

	assets *images.Assets
	engine *face.Engine

	currentScreen Screen
	// dirty is set by the face and cleared once the frame is drawn.
	dirty bool

	internalEventChannel chan event.InternalEvent

	eventLoopAskDone chan bool
	eventLoopDone    chan bool
	eventLoopStopped chan struct{}
}

type Screen int64

const (
	INTRO_SCREEN Screen = iota
	FACE_SCREEN
	END_SCREEN
)

func NewServerApp(configDir string, debugMode bool, simulationMode bool) *ServerApp {

	logrus.Debugf("Creation of sunface server %s ...", version.AppVersion.String())

	app := &ServerApp{
		currentScreen:        INTRO_SCREEN,
		internalEventChannel: make(chan event.InternalEvent, 64),
		eventLoopAskDone:     make(chan bool),
		eventLoopDone:        make(chan bool),
		eventLoopStopped:     make(chan struct{}),
		ServerConfig:         config.NewServerConfig(configDir, debugMode, simulationMode),
	}

	surfaceParam := app.SurfaceParam
	app.displayDevice = device.NewDisplay(app.SimulationMode, device.Surface{
		Width:            int(surfaceParam.Width),
		Height:           int(surfaceParam.Height),
		Round:            surfaceParam.Round,
		LowBitColor:      surfaceParam.LowBitColor,
		BurnInProtection: surfaceParam.BurnInProtection,
	})
	app.clockDevice = device.NewClock()
	app.buttonsDevice = device.NewButtons(app.SimulationMode, map[event.ButtonId]string{
		event.MODE_BUTTON:    app.ButtonsParam.Mode,
		event.SCREEN_BUTTON:  app.ButtonsParam.Screen,
		event.WEATHER_BUTTON: app.ButtonsParam.Weather,
	})
	app.apiDevice = api.NewApi(app.ServerConfig)

	syncParam := app.SyncParam
	transport := datasync.NewMQTTTransport(datasync.MQTTConfig{
		Broker:         syncParam.Broker,
		ClientId:       syncParam.ClientId,
		Username:       syncParam.Username,
		Password:       syncParam.Password,
		Qos:            byte(syncParam.Qos),
		ConnectTimeout: syncParam.ConnectTimeoutDuration(),
	})

	app.assets = images.NewAssets(app.GetCompleteAssetsDir())
	app.engine = face.NewEngine(
		scheduler.SystemClock,
		transport,
		app.assets,
		face.Options{
			Cadence:        app.Cadence(),
			AmbientWeather: app.AmbientWeather,
			Sync: datasync.Options{
				TopicPrefix: syncParam.TopicPrefix,
				MaxPending:  int(syncParam.MaxPending),
			},
		},
		app.invalidate,
		app.post,
	)

	logrus.Debugln("Server created")

	return app
}

// post runs task on the event loop. Tasks posted after the loop ended are
// dropped.
func (s *ServerApp) post(task func()) {
	select {
	case s.internalEventChannel <- event.InternalEvent{Data: event.InternalEventTaskData{Task: task}}:
	case <-s.eventLoopStopped:
		logrus.Debugf("Event loop stopped, task dropped")
	}
}

// invalidate is only called from the event loop.
func (s *ServerApp) invalidate() {
	s.dirty = true
}

func (s *ServerApp) Start() {
	logrus.Printf("Starting sunface server ...")

	logrus.Printf("Starting devices ...")

	// Start display device
	s.displayDevice.Start()

	// Display startup screen
	s.refreshDisplay()
	time.Sleep(2 * time.Second)

	// Start event loop
	go s.eventLoop()

	// Bring the face up
	surface := s.displayDevice.Surface()
	s.post(func() {
		s.currentScreen = FACE_SCREEN
		s.engine.SurfaceCreated()
		s.engine.PropertiesChanged(surface.LowBitColor, surface.BurnInProtection)
		s.engine.SurfaceChanged(surface.Width, surface.Height)
		s.engine.ShapeChanged(surface.Round)
		s.engine.AmbientModeChanged(false)
		s.engine.VisibilityChanged(true)
	})

	// Start clock device
	s.clockDevice.Start()

	// Start buttons device
	s.buttonsDevice.Start()

	// Start api device
	s.apiDevice.Start()
}

func (s *ServerApp) Stop(halt bool) {
	logrus.Printf("Stopping sunface server ...")

	// Stop api
	s.apiDevice.StopSendingEvent()

	// Stop buttons device
	s.buttonsDevice.StopSendingEvent()

	// Stop clock device
	s.clockDevice.StopSendingEvent()

	// Stop event loop
	logrus.Infof("Stop event loop")
	s.eventLoopAskDone <- true
	<-s.eventLoopDone

	// Display end screen
	s.currentScreen = END_SCREEN
	s.refreshDisplay()

	// Stop display device
	s.displayDevice.Stop()

	logrus.Printf("Server stopped")

	if halt {
		logrus.Printf("System halt")
		haltCmd := exec.Command("sudo", "halt")
		err := haltCmd.Run()
		if err != nil {
			logrus.Panicf("Unable to halt the system: %v", err)
		}
	}
	os.Exit(0)
}
