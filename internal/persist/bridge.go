package persist

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"folio/internal/content"
	"folio/internal/store"
)

// Binding ties one state container to one durable slot. Local commits flow
// out through save; remote notifications flow in through ApplyExternal.
type Binding struct {
	key    string
	slots  *Store
	log    zerolog.Logger
	guard  Guard
	encode func() ([]byte, error)
	apply  func([]byte) bool

	mu          sync.Mutex
	lastWritten []byte
}

// Bridge owns the bindings of a running instance and the pub/sub listener
// that feeds them.
type Bridge struct {
	slots *Store
	log   zerolog.Logger

	mu       sync.Mutex
	bindings map[string]*Binding
}

// NewBridge builds an empty bridge over the slot store.
func NewBridge(slots *Store, log zerolog.Logger) *Bridge {
	return &Bridge{
		slots:    slots,
		log:      log,
		bindings: make(map[string]*Binding),
	}
}

func (b *Bridge) register(binding *Binding) *Binding {
	b.mu.Lock()
	b.bindings[binding.key] = binding
	b.mu.Unlock()
	return binding
}

// Binding returns the binding for a slot key, if one is registered.
func (b *Bridge) Binding(key string) (*Binding, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	binding, ok := b.bindings[key]
	return binding, ok
}

// BindCollection wires an ordered collection to a slot. decode turns a slot
// payload into records; a nil result means the payload was unusable and is
// left alone.
func BindCollection[T store.Record[T]](b *Bridge, key string, col *store.Collection[T], decode func([]byte) []T) *Binding {
	binding := &Binding{
		key:   key,
		slots: b.slots,
		log:   b.log.With().Str("slot", key).Logger(),
		encode: func() ([]byte, error) {
			return json.Marshal(col.Items())
		},
		apply: func(data []byte) bool {
			items := decode(data)
			if items == nil {
				return false
			}
			col.ReplaceAll(items)
			return true
		},
	}
	col.Subscribe(binding.onLocalChange)
	return b.register(binding)
}

// BindSingleton wires a single aggregate to a slot.
func BindSingleton[T any](b *Bridge, key string, s *store.Singleton[T], decode func([]byte) (T, bool)) *Binding {
	binding := &Binding{
		key:   key,
		slots: b.slots,
		log:   b.log.With().Str("slot", key).Logger(),
		encode: func() ([]byte, error) {
			return json.Marshal(s.Get())
		},
		apply: func(data []byte) bool {
			value, ok := decode(data)
			if !ok {
				return false
			}
			s.Set(value)
			return true
		},
	}
	s.Subscribe(binding.onLocalChange)
	return b.register(binding)
}

// onLocalChange runs on every committed change of the bound container. A
// change observed while a remote apply holds the guard is that apply's own
// effect and is not written back. A change whose serialized form matches the
// last written payload is skipped to avoid write amplification.
func (binding *Binding) onLocalChange() {
	if !binding.guard.Idle() {
		return
	}
	data, err := binding.encode()
	if err != nil {
		binding.log.Error().Err(err).Msg("encode state for save")
		return
	}
	binding.mu.Lock()
	if bytes.Equal(data, binding.lastWritten) {
		binding.mu.Unlock()
		return
	}
	binding.lastWritten = data
	binding.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := binding.slots.Save(ctx, binding.key, data); err != nil {
		binding.log.Debug().Err(err).Msg("save failed, state kept in memory")
	}
}

// ApplyExternal applies a payload that arrived from another instance. The
// guard is held for the duration so the resulting change notifications are
// not echoed back out. The payload becomes the new last-written baseline.
func (binding *Binding) ApplyExternal(data []byte) {
	if !binding.guard.Enter() {
		return
	}
	defer binding.guard.Leave()

	binding.mu.Lock()
	binding.lastWritten = data
	binding.mu.Unlock()

	if !binding.apply(data) {
		binding.log.Warn().Msg("discarded unusable remote payload")
	}
}

// Hydrate loads the slot and applies it to the bound container. A missing
// slot leaves the seeded defaults in place and reports false.
func (binding *Binding) Hydrate(ctx context.Context) (bool, error) {
	data, err := binding.slots.Load(ctx, binding.key)
	if err != nil {
		return false, err
	}
	if data == nil {
		return false, nil
	}
	binding.ApplyExternal(data)
	return true, nil
}

// HydrateAll hydrates every registered binding.
func (b *Bridge) HydrateAll(ctx context.Context) error {
	b.mu.Lock()
	bindings := make([]*Binding, 0, len(b.bindings))
	for _, binding := range b.bindings {
		bindings = append(bindings, binding)
	}
	b.mu.Unlock()
	for _, binding := range bindings {
		if _, err := binding.Hydrate(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Flush forces a write of the binding's current state, even if unchanged.
func (binding *Binding) Flush(ctx context.Context) error {
	data, err := binding.encode()
	if err != nil {
		return err
	}
	binding.mu.Lock()
	binding.lastWritten = data
	binding.mu.Unlock()
	return binding.slots.Save(ctx, binding.key, data)
}

// Listen subscribes to all slot change channels and dispatches remote
// notifications until the context ends.
func (b *Bridge) Listen(ctx context.Context) {
	pubsub := b.slots.client.PSubscribe(ctx, channelPrefix+"*")
	go func() {
		defer pubsub.Close()
		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				b.dispatch(msg.Channel, []byte(msg.Payload))
			}
		}
	}()
}

// dispatch routes one notification to its binding. Messages carrying this
// instance's own origin are its echoes and are dropped.
func (b *Bridge) dispatch(channel string, payload []byte) {
	key := strings.TrimPrefix(channel, channelPrefix)
	binding, ok := b.Binding(key)
	if !ok {
		return
	}
	var env envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		binding.log.Warn().Err(err).Msg("malformed change notification")
		return
	}
	if env.Origin == b.slots.origin {
		return
	}
	binding.ApplyExternal(env.Data)
}

// Wire connects the standard four containers to their slots.
func Wire(b *Bridge,
	projects *store.Collection[content.Project],
	progress *store.Collection[content.ProgressItem],
	profile *store.Singleton[content.Profile],
	site *store.Singleton[content.SiteContent],
	now func() time.Time,
) {
	BindCollection(b, KeyProjects, projects, content.DecodeProjects)
	BindCollection(b, KeyProgress, progress, content.DecodeProgressItems)
	BindSingleton(b, KeyProfile, profile, func(data []byte) (content.Profile, bool) {
		return content.DecodeProfile(data, now())
	})
	BindSingleton(b, KeySite, site, func(data []byte) (content.SiteContent, bool) {
		return content.DecodeSiteContent(data, now())
	})
}
