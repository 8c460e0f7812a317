package eds

import (
	"context"
	"fmt"

	"github.com/godbus/dbus/v5"
)

// ListSources enumerates every registered data source via the
// SourceManager's ObjectManager interface. This also surfaces sources from
// GNOME Online Accounts, which never appear as files on disk. Sources
// without a UID are skipped.
func (c *Client) ListSources(ctx context.Context) ([]Source, error) {
	obj := c.conn.Object(sourcesBusName, sourceManagerPath)

	var objects map[dbus.ObjectPath]map[string]map[string]dbus.Variant
	err := obj.CallWithContext(ctx, objectManagerIface+".GetManagedObjects", 0).Store(&objects)
	if err != nil {
		return nil, fmt.Errorf("listing sources: %w", err)
	}

	var sources []Source
	for path, interfaces := range objects {
		props, ok := interfaces[sourceIface]
		if !ok {
			continue
		}
		uid, _ := props["UID"].Value().(string)
		if uid == "" {
			c.log.Debug("skipping source without UID", "path", path)
			continue
		}
		data, _ := props["Data"].Value().(string)
		sources = append(sources, Source{UID: uid, Data: data})
	}
	return sources, nil
}
