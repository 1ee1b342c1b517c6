// Package notify raises desktop notifications over the session D-Bus.
package notify

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/godbus/dbus/v5"
)

const (
	notifyInterface = "org.freedesktop.Notifications"
	notifyPath      = "/org/freedesktop/Notifications"

	defaultIcon = "x-office-calendar"
)

// Notifier sends notifications and dispatches their action buttons.
// Notifications sharing a key are throttled to one per cooldown.
type Notifier struct {
	conn     *dbus.Conn
	obj      dbus.BusObject
	appName  string
	cooldown time.Duration
	now      func() time.Time

	mu      sync.Mutex
	last    map[string]time.Time
	actions map[uint32]map[string]func()
}

// New connects to the session bus.
func New(appName string, cooldown time.Duration) (*Notifier, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("connect to session bus: %w", err)
	}
	n := newNotifier(conn.Object(notifyInterface, notifyPath), appName, cooldown)
	n.conn = conn
	return n, nil
}

func newNotifier(obj dbus.BusObject, appName string, cooldown time.Duration) *Notifier {
	return &Notifier{
		obj:      obj,
		appName:  appName,
		cooldown: cooldown,
		now:      time.Now,
		last:     make(map[string]time.Time),
		actions:  make(map[uint32]map[string]func()),
	}
}

// Close closes the D-Bus connection.
func (n *Notifier) Close() error {
	if n.conn == nil {
		return nil
	}
	return n.conn.Close()
}

// Notification is one desktop notification.
type Notification struct {
	// Key throttles repeats; empty never throttles.
	Key     string
	Summary string
	Body    string
	Urgency Urgency
	Actions []Action
}

// Action is a notification button. Run is called when it is clicked.
type Action struct {
	Key   string
	Label string
	Run   func()
}

// Urgency levels for notifications.
type Urgency byte

const (
	UrgencyLow      Urgency = 0
	UrgencyNormal   Urgency = 1
	UrgencyCritical Urgency = 2
)

// Send shows notif. It reports false without calling the bus when a
// notification with the same key was sent within the cooldown.
func (n *Notifier) Send(notif Notification) (bool, error) {
	if notif.Key != "" {
		n.mu.Lock()
		now := n.now()
		if at, ok := n.last[notif.Key]; ok && now.Sub(at) < n.cooldown {
			n.mu.Unlock()
			return false, nil
		}
		n.last[notif.Key] = now
		n.mu.Unlock()
	}

	// [key1, label1, key2, label2, ...]
	var actions []string
	for _, a := range notif.Actions {
		actions = append(actions, a.Key, a.Label)
	}
	hints := map[string]dbus.Variant{
		"urgency": dbus.MakeVariant(byte(notif.Urgency)),
	}

	call := n.obj.Call(notifyInterface+".Notify", 0,
		n.appName,
		uint32(0), // replaces_id
		defaultIcon,
		notif.Summary,
		notif.Body,
		actions,
		hints,
		int32(-1), // server default timeout
	)
	if call.Err != nil {
		return false, fmt.Errorf("send notification: %w", call.Err)
	}

	var id uint32
	if err := call.Store(&id); err != nil {
		return false, fmt.Errorf("get notification id: %w", err)
	}

	if len(notif.Actions) > 0 {
		byKey := make(map[string]func(), len(notif.Actions))
		for _, a := range notif.Actions {
			byKey[a.Key] = a.Run
		}
		n.mu.Lock()
		n.actions[id] = byKey
		n.mu.Unlock()
	}

	slog.Debug("sent notification", "id", id, "summary", notif.Summary)
	return true, nil
}

// WatchActions dispatches ActionInvoked signals to the matching Action.
func (n *Notifier) WatchActions() error {
	if err := n.conn.AddMatchSignal(
		dbus.WithMatchInterface(notifyInterface),
		dbus.WithMatchMember("ActionInvoked"),
	); err != nil {
		return fmt.Errorf("add match signal: %w", err)
	}

	ch := make(chan *dbus.Signal, 10)
	n.conn.Signal(ch)

	go func() {
		for sig := range ch {
			if sig.Name != notifyInterface+".ActionInvoked" || len(sig.Body) < 2 {
				continue
			}
			id, ok1 := sig.Body[0].(uint32)
			key, ok2 := sig.Body[1].(string)
			if ok1 && ok2 {
				n.invoke(id, key)
			}
		}
	}()
	return nil
}

func (n *Notifier) invoke(id uint32, key string) {
	n.mu.Lock()
	fn := n.actions[id][key]
	delete(n.actions, id)
	n.mu.Unlock()

	if fn != nil {
		slog.Debug("notification action", "id", id, "key", key)
		fn()
	}
}
