package main

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strconv"
	"strings"

	"citydesk/libs/mailer"
)

var reviewDigestTemplate = template.Must(template.New("review_digest").Parse(`<p>{{.Reviewer}} {{.Verb}} {{.Kind}} #{{.TargetID}}: <strong>{{.Title}}</strong></p>
<ul>
<li>Status: {{.PreviousStatus}} &rarr; {{.Status}}</li>
{{if .WaterLevel}}<li>Water level: {{.WaterLevel}}</li>{{end}}
<li>Time: {{.DecidedAt}}</li>
</ul>
{{if .Note}}<pre style="white-space:pre-wrap">{{.Note}}</pre>{{end}}`))

type reviewDigestView struct {
	Reviewer       string
	Verb           string
	Kind           string
	TargetID       int
	Title          string
	PreviousStatus string
	Status         string
	WaterLevel     string
	Note           string
	DecidedAt      string
}

func buildReviewDigest(decision reviewDecision) (mailer.Message, error) {
	kind := strings.ReplaceAll(string(decision.Kind), "_", " ")
	verb := "reviewed"
	switch decision.Action {
	case "edit":
		verb = "edited"
	case "delete":
		verb = "deleted"
	}

	view := reviewDigestView{
		Reviewer:       decision.Reviewer,
		Verb:           verb,
		Kind:           kind,
		TargetID:       decision.TargetID,
		Title:          decision.Title,
		PreviousStatus: decision.PreviousStatus,
		Status:         decision.Status,
		WaterLevel:     decision.WaterLevel,
		Note:           decision.Note,
		DecidedAt:      decision.DecidedAt.UTC().Format("2006-01-02 15:04 MST"),
	}

	var html bytes.Buffer
	if err := reviewDigestTemplate.Execute(&html, view); err != nil {
		return mailer.Message{}, fmt.Errorf("render review digest: %w", err)
	}

	text := fmt.Sprintf("%s %s %s #%d (%s): %s -> %s", view.Reviewer, verb, kind, decision.TargetID, decision.Title, decision.PreviousStatus, decision.Status)
	if decision.Note != "" {
		text += "\n\n" + decision.Note
	}

	return mailer.Message{
		Subject: fmt.Sprintf("[citydesk] %s #%d %s", kind, decision.TargetID, strings.ToLower(decision.Status)),
		HTML:    html.String(),
		Text:    text,
		Tags: map[string]string{
			"category": "review_digest",
			"kind":     string(decision.Kind),
			"target":   strconv.Itoa(decision.TargetID),
		},
	}, nil
}

func (a *App) notifyReviewDecision(ctx context.Context, decision reviewDecision) {
	if a.mailer == nil || len(a.cfg.ReviewNotifyTo) == 0 {
		return
	}
	msg, err := buildReviewDigest(decision)
	if err != nil {
		a.log.Error("build review digest failed", "error", err)
		return
	}
	msg.To = a.cfg.ReviewNotifyTo
	if result, err := a.mailer.Send(ctx, msg); err != nil {
		a.log.Warn("send review digest failed", "kind", decision.Kind, "id", decision.TargetID, "error", err)
	} else {
		a.log.Info("review digest sent", "kind", decision.Kind, "id", decision.TargetID, "message_id", result.ProviderMessageID)
	}
}
