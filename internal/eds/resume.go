package eds

import (
	"context"
	"log/slog"
	"os"

	"github.com/godbus/dbus/v5"
)

const (
	loginBusName      = "org.freedesktop.login1"
	loginManagerPath  = dbus.ObjectPath("/org/freedesktop/login1")
	loginManagerIface = "org.freedesktop.login1.Manager"
	loginSessionIface = "org.freedesktop.login1.Session"
)

// ResumeWatcher observes logind for the moments a user comes back to the
// machine: waking from suspend and unlocking the session.
type ResumeWatcher struct {
	log *slog.Logger
}

// NewResumeWatcher returns a watcher. No bus connection is made until
// Watch runs.
func NewResumeWatcher(opts Options) *ResumeWatcher {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &ResumeWatcher{log: opts.Logger}
}

// Watch forwards a unit notification into notify when the system wakes
// from suspend or the current session is unlocked. Sends never block. On
// systems without logind the watcher quietly never fires; every failure
// path is a silent no-op beyond a debug log line.
func (w *ResumeWatcher) Watch(ctx context.Context, notify chan<- struct{}) {
	conn, err := dbus.ConnectSystemBus()
	if err != nil {
		w.log.Debug("system bus unavailable, resume watching disabled", "err", err)
		return
	}

	// PrepareForSleep fires twice per suspend cycle; only the waking
	// transition (argument false) matters here.
	err = conn.AddMatchSignalContext(ctx,
		dbus.WithMatchSender(loginBusName),
		dbus.WithMatchInterface(loginManagerIface),
		dbus.WithMatchMember("PrepareForSleep"),
	)
	if err != nil {
		w.log.Debug("subscribing to PrepareForSleep failed", "err", err)
		conn.Close()
		return
	}

	if sessionPath, ok := w.currentSessionPath(ctx, conn); ok {
		err = conn.AddMatchSignalContext(ctx,
			dbus.WithMatchSender(loginBusName),
			dbus.WithMatchObjectPath(sessionPath),
			dbus.WithMatchInterface(loginSessionIface),
			dbus.WithMatchMember("Unlock"),
		)
		if err != nil {
			w.log.Debug("subscribing to session Unlock failed", "err", err)
		}
	}

	signals := make(chan *dbus.Signal, 4)
	conn.Signal(signals)

	go func() {
		defer conn.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case sig, ok := <-signals:
				if !ok {
					return
				}
				if !isResumeSignal(sig) {
					continue
				}
				select {
				case notify <- struct{}{}:
				default:
				}
			}
		}
	}()
}

func (w *ResumeWatcher) currentSessionPath(ctx context.Context, conn *dbus.Conn) (dbus.ObjectPath, bool) {
	manager := conn.Object(loginBusName, loginManagerPath)

	var path dbus.ObjectPath
	err := manager.CallWithContext(ctx, loginManagerIface+".GetSessionByPID", 0, uint32(os.Getpid())).Store(&path)
	if err != nil {
		w.log.Debug("resolving logind session failed", "err", err)
		return "", false
	}
	return path, true
}

func isResumeSignal(sig *dbus.Signal) bool {
	switch sig.Name {
	case loginManagerIface + ".PrepareForSleep":
		if len(sig.Body) != 1 {
			return false
		}
		sleeping, ok := sig.Body[0].(bool)
		return ok && !sleeping
	case loginSessionIface + ".Unlock":
		return true
	}
	return false
}
