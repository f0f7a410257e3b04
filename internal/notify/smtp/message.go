package smtp

import (
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/agentstation/modelwatch/pkg/constants"
	"github.com/agentstation/modelwatch/pkg/notify"
)

var titleCaser = cases.Title(language.English)

// Subject returns the mail subject for payload, at most 100 characters.
func Subject(payload notify.Payload) string {
	total := payload.Total()
	subject := "New Amazon Bedrock model available"
	if total > 1 {
		subject = fmt.Sprintf("New Amazon Bedrock models available (%d)", total)
	}
	subject += ": " + strings.Join(payload.Regions(), ", ")

	if r := []rune(subject); len(r) > constants.MaxSubjectLength {
		subject = string(r[:constants.MaxSubjectLength-3]) + "..."
	}
	return subject
}

// Body renders the plain-text summary: one section per region, items
// grouped under their provider.
func Body(payload notify.Payload) string {
	var b strings.Builder
	b.WriteString("New models have appeared in Amazon Bedrock.\n")

	for _, region := range payload.Regions() {
		fmt.Fprintf(&b, "\n■ %s (%s)\n", notify.RegionDisplayName(region), region)

		groups := groupByProvider(payload[region])
		providers := make([]string, 0, len(groups))
		for p := range groups {
			providers = append(providers, p)
		}
		slices.Sort(providers)

		for _, p := range providers {
			fmt.Fprintf(&b, "  %s\n", ProviderName(p))
			for _, id := range groups[p] {
				fmt.Fprintf(&b, "    • %s\n", id)
			}
		}
	}
	return b.String()
}

func groupByProvider(ids []string) map[string][]string {
	out := make(map[string][]string)
	for _, id := range ids {
		p := providerOf(id)
		out[p] = append(out[p], id)
	}
	return out
}

// providerOf returns the vendor prefix of a model ID such as
// "anthropic.claude-3-haiku-20240307-v1:0".
func providerOf(id string) string {
	p, _, ok := strings.Cut(id, ".")
	if !ok || p == "" {
		return "other"
	}
	return p
}

// ProviderName formats a provider prefix for display.
func ProviderName(prefix string) string {
	return titleCaser.String(strings.ReplaceAll(prefix, "-", " "))
}
