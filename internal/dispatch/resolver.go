package dispatch

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/codekaffe/sensum/internal/command"
	"github.com/codekaffe/sensum/internal/message"
)

// PrefixChecker is a registered extension point for custom prefix rules
// (mentions, per-channel prefixes, ...). Checkers run sequentially in
// registration order and the first one that reports ok wins; a returned
// error aborts the pipeline run for the message.
type PrefixChecker func(m *message.Inbound) (prefix string, ok bool, err error)

// Resolver turns raw message text into a resolved command invocation:
// prefix, command token, argument tokens, validated named arguments.
type Resolver struct {
	registry      *command.Registry
	defaultPrefix string
	guildPrefix   func(guildID string) string
	checkers      []PrefixChecker
}

// NewResolver builds a resolver. guildPrefix may be nil; when present it
// returns the per-guild override prefix or "".
func NewResolver(reg *command.Registry, defaultPrefix string, guildPrefix func(guildID string) string) *Resolver {
	return &Resolver{
		registry:      reg,
		defaultPrefix: defaultPrefix,
		guildPrefix:   guildPrefix,
	}
}

// UsePrefixChecker appends a checker to the extension chain.
func (r *Resolver) UsePrefixChecker(c PrefixChecker) {
	r.checkers = append(r.checkers, c)
}

// ResolvePrefix finds the prefix the message was invoked with. Custom
// checkers are consulted first, in order, each awaited before the next so a
// later checker sees the effects of an earlier one. With no checker claiming
// the message, the guild override prefix (an override equal to the default
// counts as no override) or the default prefix is matched exactly.
func (r *Resolver) ResolvePrefix(m *message.Inbound) (string, bool, error) {
	for i, check := range r.checkers {
		prefix, ok, err := check(m)
		if err != nil {
			return "", false, fmt.Errorf("prefix checker %d: %w", i, err)
		}
		if ok {
			return prefix, true, nil
		}
	}

	prefix := r.defaultPrefix
	if r.guildPrefix != nil && m.GuildID != "" {
		if override := r.guildPrefix(m.GuildID); override != "" && override != r.defaultPrefix {
			prefix = override
		}
	}

	if strings.HasPrefix(strings.TrimSpace(m.Content), prefix) {
		return prefix, true, nil
	}
	return "", false, nil
}

// SplitCommand strips the prefix, collapses whitespace and newlines, and
// splits the remainder into the lowercased command token and its argument
// tokens.
func SplitCommand(content, prefix string) (string, []string) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, prefix)
	fields := strings.Fields(content)
	if len(fields) == 0 {
		return "", nil
	}
	return strings.ToLower(fields[0]), fields[1:]
}

// restKey collects non-flag tokens during flag parsing; it is stripped
// before arguments are accepted.
const restKey = "_"

// ParseFlags reads CLI-style "--name value" and "--name=value" tokens.
// Everything that is not a flag lands under the synthetic restKey.
func ParseFlags(tokens []string) map[string]string {
	flags := make(map[string]string)
	var rest []string
	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]
		if !strings.HasPrefix(tok, "--") || len(tok) == 2 {
			rest = append(rest, tok)
			continue
		}
		body := tok[2:]
		if eq := strings.IndexByte(body, '='); eq >= 0 {
			flags[strings.ToLower(body[:eq])] = body[eq+1:]
			continue
		}
		if i+1 < len(tokens) && !strings.HasPrefix(tokens[i+1], "--") {
			flags[strings.ToLower(body)] = tokens[i+1]
			i++
			continue
		}
		flags[strings.ToLower(body)] = "true"
	}
	if len(rest) > 0 {
		flags[restKey] = strings.Join(rest, " ")
	}
	return flags
}

var userMention = regexp.MustCompile(`^<@!?(\d+)>$`)
var bareID = regexp.MustCompile(`^\d{5,}$`)

func coerce(kind command.Kind, token string) (any, error) {
	switch kind {
	case command.KindString:
		return token, nil
	case command.KindNumber:
		n, err := strconv.ParseFloat(token, 64)
		if err != nil {
			return nil, fmt.Errorf("%q is not a number", token)
		}
		return n, nil
	case command.KindBoolean:
		switch strings.ToLower(token) {
		case "true", "yes", "y", "on", "1":
			return true, nil
		case "false", "no", "n", "off", "0":
			return false, nil
		}
		return nil, fmt.Errorf("%q is not a boolean", token)
	case command.KindUser:
		if m := userMention.FindStringSubmatch(token); m != nil {
			return m[1], nil
		}
		if bareID.MatchString(token) {
			return token, nil
		}
		return nil, fmt.Errorf("%q is not a user mention or id", token)
	case command.KindAny:
		return token, nil
	}
	return nil, fmt.Errorf("unsupported argument kind %v", kind)
}

// ValidateArgs binds tokens positionally to the command's schema. When the
// positional pass fails, flag-style parsed values are overlaid per field and
// validation retried; if either pass accepts a field, the field is accepted.
func ValidateArgs(cmd *command.Command, tokens []string) (map[string]any, map[string]string, []command.ArgError) {
	args := make(map[string]any, len(cmd.Args))
	flags := ParseFlags(tokens)
	var errs []command.ArgError

	for i, schema := range cmd.Args {
		var positionalErr error
		if i < len(tokens) {
			v, err := coerce(schema.Kind, tokens[i])
			if err == nil {
				args[schema.Name] = v
				continue
			}
			positionalErr = err
		} else {
			positionalErr = fmt.Errorf("missing required argument")
		}

		if raw, ok := flags[strings.ToLower(schema.Name)]; ok {
			v, err := coerce(schema.Kind, raw)
			if err == nil {
				args[schema.Name] = v
				continue
			}
			positionalErr = err
		}

		errs = append(errs, command.ArgError{
			Field:   schema.Name,
			Kind:    schema.Kind,
			Message: positionalErr.Error(),
		})
	}

	delete(flags, restKey)
	if len(errs) > 0 {
		return nil, flags, errs
	}
	return args, flags, nil
}

// ContentAfterArgs returns the text after the command's required arguments:
// exactly len(schema) whitespace-joined tokens are skipped. This is a
// positional heuristic, not per-parameter quoting.
func ContentAfterArgs(argTokens []string, schemaLen int) string {
	if schemaLen >= len(argTokens) {
		return ""
	}
	return strings.Join(argTokens[schemaLen:], " ")
}
