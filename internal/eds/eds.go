// Package eds talks to Evolution Data Server over the D-Bus session bus:
// source discovery through the SourceManager, calendar sessions through the
// CalendarFactory, and change notifications through PropertiesChanged. It
// also watches logind on the system bus for suspend/resume transitions.
package eds

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/godbus/dbus/v5"
)

const (
	sourcesBusName    = "org.gnome.evolution.dataserver.Sources5"
	sourceManagerPath = dbus.ObjectPath("/org/gnome/evolution/dataserver/SourceManager")
	sourceIface       = "org.gnome.evolution.dataserver.Source"

	factoryBusName = "org.gnome.evolution.dataserver.Calendar8"
	factoryPath    = dbus.ObjectPath("/org/gnome/evolution/dataserver/CalendarFactory")
	factoryIface   = "org.gnome.evolution.dataserver.CalendarFactory"

	calendarIface = "org.gnome.evolution.dataserver.Calendar"

	objectManagerIface = "org.freedesktop.DBus.ObjectManager"
	propertiesIface    = "org.freedesktop.DBus.Properties"
)

// Source is one registered EDS data source: its UID and the raw keyfile
// text describing it.
type Source struct {
	UID  string
	Data string
}

// Service is the narrow surface the engine consumes. Tests substitute a
// fake; production code uses Client.
type Service interface {
	ListSources(ctx context.Context) ([]Source, error)
	OpenSession(ctx context.Context, uid string) (Session, error)
}

// Session is an open connection to one calendar's backend object.
type Session interface {
	// Query returns the raw calendar records overlapping [start, end].
	Query(ctx context.Context, start, end time.Time) ([]string, error)
	// EmailAddress is the identity address the backend associates with
	// this calendar, empty when the backend has none.
	EmailAddress() string
	// Revision is the backend's last-sync timestamp, empty when unknown.
	Revision() string
	// Refresh asks the backend to re-sync. Fire and forget: completion is
	// observed through PropertiesChanged, not the reply.
	Refresh(ctx context.Context)
	// Watch forwards a unit notification into notify whenever the
	// backend's properties change. Sends never block; bursts coalesce into
	// whatever the channel can hold. Returns once the subscription is
	// established, forwarding continues until ctx is done.
	Watch(ctx context.Context, notify chan<- struct{}) error
}

// Options configures a Client.
type Options struct {
	Logger *slog.Logger
}

// Client implements Service against a live session bus.
type Client struct {
	conn *dbus.Conn
	log  *slog.Logger
}

// Connect opens a session bus connection.
func Connect(opts Options) (*Client, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("connecting to session bus: %w", err)
	}
	return &Client{conn: conn, log: opts.Logger}, nil
}

// Close releases the bus connection.
func (c *Client) Close() error {
	return c.conn.Close()
}
