package addressing

import (
	"time"

	"opspager/internal/recipient"
	"opspager/internal/transport"
	"opspager/pkg/logx"
)

// Resolver walks a recipient graph breadth-first and produces one
// addressing result per visited recipient. Each recipient is evaluated
// at most once per resolution, which makes cyclic group memberships
// terminate.
type Resolver struct {
	individuals *individualEvaluator
	roles       *roleEvaluator
	groups      *groupEvaluator

	log logx.Logger
	now func() time.Time
}

func NewResolver(expressions ExpressionEvaluator, transports TransportLookup, log logx.Logger) *Resolver {
	configs := NewConfigurationEvaluator(expressions, transports)
	return &Resolver{
		individuals: &individualEvaluator{configs: configs},
		roles:       &roleEvaluator{configs: configs},
		groups:      &groupEvaluator{configs: configs},
		log:         log,
		now:         time.Now,
	}
}

// Resolve evaluates one recipient and, transitively, every group member
// reachable from it.
func (r *Resolver) Resolve(root recipient.Recipient, msg transport.Message) []AddressingResult {
	return r.ResolveAll([]recipient.Recipient{root}, msg)
}

// ResolveAll evaluates multiple addressed recipients against one shared
// visited set, so a recipient reachable from several roots is still
// evaluated only once. Results are returned in traversal order.
func (r *Resolver) ResolveAll(roots []recipient.Recipient, msg transport.Message) []AddressingResult {
	ctx := NewEvaluationContext(msg.Priority, r.now(), len(msg.Body))

	queue := append([]recipient.Recipient(nil), roots...)
	evaluated := map[string]struct{}{}
	var results []AddressingResult

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		id := current.ID().String()
		if _, seen := evaluated[id]; seen {
			continue
		}
		evaluated[id] = struct{}{}

		result := r.evaluatorFor(current).Evaluate(current, ctx, msg)
		results = append(results, result)

		if result.HasMembersToExpand() {
			r.log.Debug("expanding group members",
				logx.String("group", current.Name()),
				logx.Int("members", len(result.MembersToExpand)))
			queue = append(queue, result.MembersToExpand...)
		}
	}

	return results
}

func (r *Resolver) evaluatorFor(rec recipient.Recipient) kindEvaluator {
	switch rec.Kind() {
	case recipient.KindRole:
		return r.roles
	case recipient.KindGroup:
		return r.groups
	default:
		return r.individuals
	}
}
