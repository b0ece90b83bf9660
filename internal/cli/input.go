package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/alexanderramin/docket/internal/config"
	"github.com/alexanderramin/docket/internal/domain"
)

const dateLayout = "2006-01-02"

// parseWhen accepts RFC 3339, a bare date (midnight UTC) or a relative
// offset like "+3d" or "+36h" from now.
func parseWhen(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "+") {
		if strings.HasSuffix(s, "d") {
			days, err := strconv.Atoi(strings.TrimSuffix(s[1:], "d"))
			if err != nil {
				return time.Time{}, fmt.Errorf("%w: invalid offset %q", domain.ErrValidation, s)
			}
			return now.AddDate(0, 0, days), nil
		}
		d, err := time.ParseDuration(s[1:])
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: invalid offset %q", domain.ErrValidation, s)
		}
		return now.Add(d), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid time %q (use YYYY-MM-DD, RFC 3339 or +Nd)", domain.ErrValidation, s)
	}
	return t, nil
}

// optionalWhen is parseWhen for flags that may be left empty.
func optionalWhen(s string, now time.Time) (*time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	t, err := parseWhen(s, now)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// channelsFlag is a --channels value checked when the flag is parsed.
type channelsFlag struct {
	channels *[]domain.Channel
}

var _ pflag.Value = channelsFlag{}

func newChannelsFlag(target *[]domain.Channel, defaults ...domain.Channel) channelsFlag {
	*target = defaults
	return channelsFlag{channels: target}
}

func (f channelsFlag) String() string {
	if f.channels == nil {
		return ""
	}
	names := make([]string, len(*f.channels))
	for i, c := range *f.channels {
		names[i] = string(c)
	}
	return strings.Join(names, ",")
}

func (f channelsFlag) Set(s string) error {
	chs, err := config.ParseChannels(s)
	if err != nil {
		return err
	}
	*f.channels = chs
	return nil
}

func (f channelsFlag) Type() string { return "channels" }

// parseSteps reads an escalation ladder written as "3:remind,5:notify_manager".
// A trailing "!" disables a step: "5:notify_hr!".
func parseSteps(s string) (domain.EscalationPolicy, error) {
	var policy domain.EscalationPolicy
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		enabled := !strings.HasSuffix(part, "!")
		part = strings.TrimSuffix(part, "!")
		day, action, ok := strings.Cut(part, ":")
		if !ok {
			return nil, fmt.Errorf("%w: step %q must look like DAY:ACTION", domain.ErrRuleConfig, part)
		}
		n, err := strconv.Atoi(strings.TrimSpace(day))
		if err != nil {
			return nil, fmt.Errorf("%w: step %q: day must be a number", domain.ErrRuleConfig, part)
		}
		policy = append(policy, domain.EscalationStep{
			DayOffset: n,
			Action:    domain.EscalationAction(strings.TrimSpace(action)),
			Enabled:   enabled,
		})
	}
	return policy, nil
}

func nonEmpty(values []string) []string {
	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
