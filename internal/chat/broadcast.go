package chat

import "github.com/rs/zerolog"

// Broadcaster resolves participant identities to live clients through
// the registry and pushes one payload to each reachable one.
//
// Delivery policy: the sender is not filtered out, so it receives its
// own echo; unreachable participants are skipped without error; a
// participant whose outbound buffer is full has this payload dropped
// rather than stalling the fan-out.
type Broadcaster struct {
	registry *Registry
	log      zerolog.Logger
}

func NewBroadcaster(registry *Registry, log zerolog.Logger) *Broadcaster {
	return &Broadcaster{registry: registry, log: log}
}

// Broadcast pushes payload to every currently registered participant
// and reports how many deliveries were queued.
func (b *Broadcaster) Broadcast(participants []string, payload []byte) int {
	delivered := 0
	for _, identity := range participants {
		client, ok := b.registry.Lookup(identity)
		if !ok {
			continue
		}
		if !client.TrySend(payload) {
			b.log.Warn().
				Str("participant", identity).
				Msg("dropping broadcast: send buffer full or client closed")
			continue
		}
		delivered++
	}
	return delivered
}
