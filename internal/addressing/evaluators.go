package addressing

import (
	"opspager/internal/recipient"
	"opspager/internal/transport"
)

// kindEvaluator produces the addressing result for one recipient kind.
type kindEvaluator interface {
	Evaluate(r recipient.Recipient, ctx EvaluationContext, msg transport.Message) AddressingResult
}

type individualEvaluator struct {
	configs *ConfigurationEvaluator
}

func (e *individualEvaluator) Evaluate(r recipient.Recipient, ctx EvaluationContext, msg transport.Message) AddressingResult {
	eval := e.configs.Evaluate(r, ctx, msg)
	return AddressingResult{
		Recipient: r,
		Selected:  eval.Selected,
		Errors:    eval.Errors,
	}
}

type roleEvaluator struct {
	configs *ConfigurationEvaluator
}

// Evaluate uses the role's own configurations when it has any. A role
// without configurations hands off entirely to its delegate, so the
// result is attributed to the delegate with DelegatedFrom pointing back
// at the role. A role with neither reports the usual empty-config error.
func (e *roleEvaluator) Evaluate(r recipient.Recipient, ctx EvaluationContext, msg transport.Message) AddressingResult {
	role := r.(*recipient.Role)

	if len(role.Configurations()) == 0 {
		if delegate := role.Delegate(); delegate != nil {
			eval := e.configs.Evaluate(delegate, ctx, msg)
			return AddressingResult{
				Recipient:     delegate,
				DelegatedFrom: role,
				Selected:      eval.Selected,
				Errors:        eval.Errors,
			}
		}
	}

	eval := e.configs.Evaluate(role, ctx, msg)
	return AddressingResult{
		Recipient: role,
		Selected:  eval.Selected,
		Errors:    eval.Errors,
	}
}

type groupEvaluator struct {
	configs *ConfigurationEvaluator
}

// Evaluate decides whether a group's members are expanded in addition to
// (or instead of) the group's own configurations. A group with no
// configurations and no members is a dead end. Expansion stops only when
// the group's evaluation selected at least one configuration and every
// selected configuration explicitly opted out of continuing down the
// hierarchy.
func (e *groupEvaluator) Evaluate(r recipient.Recipient, ctx EvaluationContext, msg transport.Message) AddressingResult {
	group := r.(*recipient.Group)

	if len(group.Configurations()) == 0 {
		if !group.HasMembers() {
			return AddressingResult{
				Recipient: group,
				Errors:    []AddressingError{{Type: ErrEmptyGroupNoConfigurations, Recipient: group}},
			}
		}
		return AddressingResult{
			Recipient:       group,
			MembersToExpand: group.Members(),
		}
	}

	eval := e.configs.Evaluate(group, ctx, msg)
	result := AddressingResult{
		Recipient: group,
		Selected:  eval.Selected,
		Errors:    eval.Errors,
	}

	if group.HasMembers() && (!result.HasSelected() || !eval.StopsHierarchyExpansion()) {
		result.MembersToExpand = group.Members()
	}

	return result
}
