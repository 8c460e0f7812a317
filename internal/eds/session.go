package eds

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/godbus/dbus/v5"
)

// OpenSession asks the CalendarFactory to open the calendar behind the
// given source UID and returns a session bound to the backend object the
// factory hands back.
func (c *Client) OpenSession(ctx context.Context, uid string) (Session, error) {
	factory := c.conn.Object(factoryBusName, factoryPath)

	var (
		path dbus.ObjectPath
		bus  string
	)
	err := factory.CallWithContext(ctx, factoryIface+".OpenCalendar", 0, uid).Store(&path, &bus)
	if err != nil {
		return nil, fmt.Errorf("opening calendar %s: %w", uid, err)
	}
	return &calendarSession{conn: c.conn, bus: bus, path: path, uid: uid, log: c.log}, nil
}

type calendarSession struct {
	conn *dbus.Conn
	bus  string
	path dbus.ObjectPath
	uid  string
	log  *slog.Logger
}

// TimeRangeQuery builds the backend query matching every component that
// occurs within [start, end]. Instants are rendered in UTC.
func TimeRangeQuery(start, end time.Time) string {
	const layout = "20060102T150405Z"
	return fmt.Sprintf("(occur-in-time-range? (make-time %q) (make-time %q))",
		start.UTC().Format(layout), end.UTC().Format(layout))
}

func (s *calendarSession) Query(ctx context.Context, start, end time.Time) ([]string, error) {
	obj := s.conn.Object(s.bus, s.path)

	var records []string
	err := obj.CallWithContext(ctx, calendarIface+".GetObjectList", 0, TimeRangeQuery(start, end)).Store(&records)
	if err != nil {
		return nil, fmt.Errorf("querying calendar %s: %w", s.uid, err)
	}
	return records, nil
}

func (s *calendarSession) EmailAddress() string {
	v, err := s.conn.Object(s.bus, s.path).GetProperty(calendarIface + ".CalEmailAddress")
	if err != nil {
		return ""
	}
	email, _ := v.Value().(string)
	return email
}

// Revision reports the backend's sync revision, e.g.
// "2026-01-08T04:19:20Z(0)". Only the timestamp before the parenthesis is
// returned.
func (s *calendarSession) Revision() string {
	v, err := s.conn.Object(s.bus, s.path).GetProperty(calendarIface + ".Revision")
	if err != nil {
		return ""
	}
	revision, _ := v.Value().(string)
	timestamp, _, _ := strings.Cut(revision, "(")
	return timestamp
}

func (s *calendarSession) Refresh(ctx context.Context) {
	obj := s.conn.Object(s.bus, s.path)
	if call := obj.CallWithContext(ctx, calendarIface+".Refresh", 0); call.Err != nil {
		s.log.Debug("calendar refresh failed", "uid", s.uid, "err", call.Err)
	}
}

func (s *calendarSession) Watch(ctx context.Context, notify chan<- struct{}) error {
	err := s.conn.AddMatchSignalContext(ctx,
		dbus.WithMatchSender(s.bus),
		dbus.WithMatchObjectPath(s.path),
		dbus.WithMatchInterface(propertiesIface),
		dbus.WithMatchMember("PropertiesChanged"),
	)
	if err != nil {
		return fmt.Errorf("subscribing to calendar %s: %w", s.uid, err)
	}

	signals := make(chan *dbus.Signal, 16)
	s.conn.Signal(signals)

	go func() {
		defer s.conn.RemoveSignal(signals)
		for {
			select {
			case <-ctx.Done():
				return
			case sig, ok := <-signals:
				if !ok {
					return
				}
				// The signal channel sees every matched signal on the
				// shared connection; keep only this calendar's.
				if sig.Path != s.path || sig.Name != propertiesIface+".PropertiesChanged" {
					continue
				}
				select {
				case notify <- struct{}{}:
				default:
				}
			}
		}
	}()
	return nil
}
