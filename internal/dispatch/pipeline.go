package dispatch

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/codekaffe/sensum/internal/command"
	"github.com/codekaffe/sensum/internal/cooldown"
	"github.com/codekaffe/sensum/internal/events"
	"github.com/codekaffe/sensum/internal/message"
	"github.com/codekaffe/sensum/internal/permissions"
)

const feedbackTTL = 5 * time.Second

// ContextExtender is a registered extension point that mutates the execution
// context after it is built and before any gate that reads it. Extenders run
// sequentially so a later one sees the effects of an earlier one; an error
// aborts the pipeline run for the message.
type ContextExtender func(ctx *command.Context) error

// Pipeline is the command dispatch state machine: one run per inbound (or
// edited) message, terminal at the first unmet gate. Runs for distinct
// messages proceed concurrently; the gates within one run are sequential.
// Deps bundles everything one pipeline needs. Services is handed through to
// command handlers untouched.
type Deps struct {
	Registry  *command.Registry
	Resolver  *Resolver
	Perms     *permissions.Evaluator
	Cooldowns *cooldown.Store
	Bus       *events.Bus
	Services  command.Services
}

type Pipeline struct {
	registry  *command.Registry
	resolver  *Resolver
	perms     *permissions.Evaluator
	cooldowns *cooldown.Store
	bus       *events.Bus
	services  command.Services
	extenders []ContextExtender

	// feedbackDelay overrides the transient-feedback deletion delay in tests.
	feedbackDelay time.Duration
}

func NewPipeline(deps Deps) *Pipeline {
	return &Pipeline{
		registry:      deps.Registry,
		resolver:      deps.Resolver,
		perms:         deps.Perms,
		cooldowns:     deps.Cooldowns,
		bus:           deps.Bus,
		services:      deps.Services,
		feedbackDelay: feedbackTTL,
	}
}

// UseContextExtender appends an extender to the extension chain.
func (p *Pipeline) UseContextExtender(e ContextExtender) {
	p.extenders = append(p.extenders, e)
}

// Handle runs one message through the gate chain and, when every gate
// passes, invokes the resolved handler exactly once with isolated error
// capture. It never returns an error: handler and configuration failures go
// to the event bus, caller mistakes become transient feedback.
func (p *Pipeline) Handle(m *message.Inbound) {
	// Gate 1: bots never invoke commands.
	if m == nil || m.AuthorBot {
		return
	}

	// Gate 2: prefix must resolve.
	prefix, ok, err := p.resolver.ResolvePrefix(m)
	if err != nil {
		p.bus.Error("prefix resolution extension failed", err, p.fields(m, nil))
		return
	}
	if !ok {
		return
	}

	// Gate 3: command must resolve, directly or via alias.
	name, argTokens := SplitCommand(m.Content, prefix)
	cmd, viaAlias, ok := p.registry.Resolve(name)
	if !ok {
		return
	}

	// Gate 4: hydrate the guild member before any tier predicate runs.
	if !m.IsDM() && m.Member == nil {
		if err := m.FetchMember(); err != nil {
			p.bus.Warn("failed to hydrate guild member", err, p.fields(m, cmd))
		}
	}

	ctx := &command.Context{
		InvocationID: uuid.NewString(),
		Message:      m,
		CallerID:     m.AuthorID,
		CallerTag:    m.AuthorTag,
		CallerName:   m.DisplayName(),
		IsDM:         m.IsDM(),
		Command:      cmd,
		ViaAlias:     viaAlias,
		Prefix:       prefix,
		RawArgs:      argTokens,
		At:           time.Now(),
		Bus:          p.bus,
		Registry:     p.registry,
		Services:     p.services,
	}

	for i, extend := range p.extenders {
		if err := extend(ctx); err != nil {
			p.bus.Error("context extender failed", fmt.Errorf("context extender %d: %w", i, err), p.fields(m, cmd))
			return
		}
	}

	// Gate 5: NSFW-only commands stay in NSFW channels.
	if cmd.NSFWOnly && !m.NSFW {
		p.feedback(m, fmt.Sprintf("The `%s` command can only be used in NSFW channels.", cmd.Name))
		return
	}

	// Gate 6: run-context must match the message origin.
	rc := command.ContextGuild
	if m.IsDM() {
		rc = command.ContextDM
	}
	if !cmd.AllowedIn(rc) {
		if rc == command.ContextDM {
			p.feedback(m, fmt.Sprintf("The `%s` command cannot be used in direct messages.", cmd.Name))
		} else {
			p.feedback(m, fmt.Sprintf("The `%s` command can only be used in direct messages.", cmd.Name))
		}
		return
	}

	// Gate 7: permission tier. A required tier the configuration never
	// declared is a configuration error, not a caller mistake.
	if !p.perms.Known(cmd.Tier) {
		p.bus.Error("command requires an undeclared permission tier", fmt.Errorf("command %q requires level %d", cmd.Name, cmd.Tier), p.fields(m, cmd))
		return
	}
	ctx.PermissionLevel = p.perms.Evaluate(m)
	if ctx.PermissionLevel < cmd.Tier {
		if !cmd.Hidden {
			p.feedback(m, fmt.Sprintf(
				"You need the `%s` tier to use `%s`; you are `%s`.",
				p.perms.Name(cmd.Tier), cmd.Name, p.perms.Name(ctx.PermissionLevel),
			))
		}
		return
	}

	// Gate 8: argument schema.
	args, flags, argErrs := ValidateArgs(cmd, argTokens)
	ctx.Flags = flags
	if len(argErrs) > 0 {
		ctx.ArgErrors = argErrs
		var b strings.Builder
		b.WriteString(fmt.Sprintf("Usage: `%s%s`\n", prefix, cmd.Usage()))
		for _, e := range argErrs {
			fmt.Fprintf(&b, "`%s` (%s): %s\n", e.Field, e.Kind, e.Message)
		}
		p.feedback(m, strings.TrimRight(b.String(), "\n"))
		return
	}
	ctx.Args = args
	ctx.Rest = ContentAfterArgs(argTokens, len(cmd.Args))

	// Gate 9: cooldown.
	remaining, err := p.cooldowns.Remaining(cmd.Name, m.AuthorID)
	if err != nil {
		p.bus.Error("cooldown configuration missing", err, p.fields(m, cmd))
		return
	}
	if remaining > 0 {
		p.feedback(m, fmt.Sprintf("Easy there. `%s` is on cooldown for another %s.", cmd.Name, humanSeconds(remaining)))
		return
	}

	// All gates passed.
	p.cooldowns.Touch(cmd.Name, m.AuthorID)
	if cmd.DeleteInvocation {
		// deletion failures are swallowed, same as transient feedback
		_ = m.Responder.Delete(m.ChannelID, m.ID)
	}

	f := p.fields(m, cmd)
	f["invocation"] = ctx.InvocationID
	f["caller_tag"] = m.AuthorTag
	f["args"] = strings.Join(argTokens, " ")
	f["via_alias"] = fmt.Sprintf("%t", viaAlias)
	p.bus.Command("command invoked", f)

	p.invoke(cmd, ctx)
}

// invoke runs the handler with isolated error capture: a panic or returned
// error is enriched with origin context and reported, never propagated.
func (p *Pipeline) invoke(cmd *command.Command, ctx *command.Context) {
	defer func() {
		if r := recover(); r != nil {
			p.bus.Error("command handler panicked", fmt.Errorf("command %q: %v", cmd.Name, r), p.fields(ctx.Message, cmd))
		}
	}()
	if err := cmd.Run(ctx); err != nil {
		p.bus.Error("command handler failed", fmt.Errorf("command %q: %w", cmd.Name, err), p.fields(ctx.Message, cmd))
	}
}

// feedback sends a short-lived notice to the caller and deletes it after a
// fixed delay. Send failures are reported as warnings; deletion failures are
// swallowed.
func (p *Pipeline) feedback(m *message.Inbound, content string) {
	handle, err := m.Responder.Send(m.ChannelID, content)
	if err != nil {
		p.bus.Warn("failed to send transient feedback", err, p.fields(m, nil))
		return
	}
	time.AfterFunc(p.feedbackDelay, func() {
		_ = m.Responder.Delete(handle.ChannelID, handle.ID)
	})
}

func (p *Pipeline) fields(m *message.Inbound, cmd *command.Command) map[string]string {
	f := map[string]string{
		"channel": m.ChannelID,
		"caller":  m.AuthorID,
		"dm":      fmt.Sprintf("%t", m.IsDM()),
	}
	if m.GuildID != "" {
		f["guild"] = m.GuildID
	}
	if cmd != nil {
		f["command"] = cmd.Name
	}
	return f
}

// humanSeconds renders fractional seconds the way a caller wants to read
// them: "2.4s", "1m 05s".
func humanSeconds(s float64) string {
	if s < 60 {
		return fmt.Sprintf("%.1fs", s)
	}
	whole := int(math.Ceil(s))
	return fmt.Sprintf("%dm %02ds", whole/60, whole%60)
}
