package panther

import (
	"context"
	"iter"
	"regexp"
	"strings"
	"time"
)

var emailPattern = regexp.MustCompile(`^[\w\-.]+@([\w-]+\.)+[\w-]{2,4}$`)

// AlertStatus represents the triage state of an alert.
type AlertStatus string

const (
	AlertOpen     AlertStatus = "OPEN"
	AlertTriaged  AlertStatus = "TRIAGED"
	AlertResolved AlertStatus = "RESOLVED"
	AlertClosed   AlertStatus = "CLOSED"
)

// CommentFormat is the formatting of an alert comment body.
type CommentFormat string

const (
	CommentPlainText CommentFormat = "PLAIN_TEXT"
	CommentHTML      CommentFormat = "HTML"
)

// Alert represents a Panther alert.
type Alert struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Severity    string      `json:"severity"`
	Status      AlertStatus `json:"status"`
	CreatedAt   time.Time   `json:"createdAt"`
	Description string      `json:"description,omitempty"`
}

// AlertComment represents a comment attached to an alert.
type AlertComment struct {
	ID        string        `json:"id"`
	Body      string        `json:"body"`
	Format    CommentFormat `json:"format"`
	CreatedAt time.Time     `json:"createdAt"`
	CreatedBy string        `json:"createdBy,omitempty"`
}

// UpdateAlertsRequest describes changes to apply to one or more alerts. The
// backend updates status and assignee through separate mutations; this
// client issues both when both fields are set and merges the results.
type UpdateAlertsRequest struct {
	// Status is the new triage state. Optional.
	Status AlertStatus
	// Assignee is the ID or email address of the new assignee; which
	// mutation is used depends on the value's shape. Optional.
	Assignee string
}

// AlertService provides operations on Panther alerts.
type AlertService interface {
	// List returns an iterator over all alerts created within the given
	// timespan. Pages are fetched lazily as you iterate.
	List(ctx context.Context, start, end Timestamp, opts ...RequestOption) iter.Seq2[*Alert, error]

	// Get retrieves a single alert by ID.
	Get(ctx context.Context, alertID string, opts ...RequestOption) (*Alert, error)

	// AddComment attaches a comment to an existing alert.
	AddComment(ctx context.Context, alertID, body string, format CommentFormat, opts ...RequestOption) (*AlertComment, error)

	// Update changes the status and/or assignee of the given alerts and
	// returns the updated alerts.
	Update(ctx context.Context, alertIDs []string, req *UpdateAlertsRequest, opts ...RequestOption) ([]*Alert, error)
}

// alertService implements AlertService.
type alertService struct {
	gql *gqlExecutor
}

func newAlertService(gql *gqlExecutor) *alertService {
	return &alertService{gql: gql}
}

// alertsPage is the wire shape of a single alerts/list page.
type alertsPage struct {
	Alerts struct {
		Edges []struct {
			Node *Alert `json:"node"`
		} `json:"edges"`
		PageInfo struct {
			HasNextPage bool   `json:"hasNextPage"`
			EndCursor   string `json:"endCursor"`
		} `json:"pageInfo"`
	} `json:"alerts"`
}

// List returns an iterator over all alerts created within the timespan.
func (s *alertService) List(ctx context.Context, start, end Timestamp, opts ...RequestOption) iter.Seq2[*Alert, error] {
	return func(yield func(*Alert, error) bool) {
		startStr, err := start.Normalize()
		if err != nil {
			yield(nil, err)
			return
		}
		endStr, err := end.Normalize()
		if err != nil {
			yield(nil, err)
			return
		}

		reqCfg := newRequestConfig()
		reqCfg.apply(opts...)

		var cursor string
		for {
			input := map[string]any{
				"createdAtAfter":  startStr,
				"createdAtBefore": endStr,
			}
			if cursor != "" {
				input["cursor"] = cursor
			}

			var page alertsPage
			err := s.gql.execute(ctx, "alerts/list", map[string]any{"input": input}, reqCfg.headers, &page)
			if err != nil {
				yield(nil, err)
				return
			}

			for _, edge := range page.Alerts.Edges {
				if err := ctx.Err(); err != nil {
					yield(nil, err)
					return
				}
				if !yield(edge.Node, nil) {
					return
				}
			}

			if !page.Alerts.PageInfo.HasNextPage {
				return
			}
			cursor = page.Alerts.PageInfo.EndCursor
		}
	}
}

// Get retrieves a single alert by ID.
func (s *alertService) Get(ctx context.Context, alertID string, opts ...RequestOption) (*Alert, error) {
	// Alert IDs can't have dashes.
	alertID, err := CompactID(alertID)
	if err != nil {
		return nil, err
	}

	reqCfg := newRequestConfig()
	reqCfg.apply(opts...)

	var result struct {
		Alert *Alert `json:"alert"`
	}
	err = s.gql.execute(ctx, "alerts/get", map[string]any{"id": alertID}, reqCfg.headers, &result)
	if err != nil {
		return nil, err
	}

	return result.Alert, nil
}

// AddComment attaches a comment to an existing alert.
func (s *alertService) AddComment(ctx context.Context, alertID, body string, format CommentFormat, opts ...RequestOption) (*AlertComment, error) {
	alertID, err := CompactID(alertID)
	if err != nil {
		return nil, err
	}

	format = CommentFormat(strings.ToUpper(string(format)))
	if format == "" {
		format = CommentPlainText
	}
	if format != CommentPlainText && format != CommentHTML {
		return nil, &ValidationError{Message: "comment format must be PLAIN_TEXT or HTML"}
	}

	reqCfg := newRequestConfig()
	reqCfg.apply(opts...)

	input := map[string]any{
		"alertId": alertID,
		"body":    body,
		"format":  format,
	}

	var result struct {
		CreateAlertComment struct {
			Comment *AlertComment `json:"comment"`
		} `json:"createAlertComment"`
	}
	err = s.gql.execute(ctx, "alerts/add_comment", map[string]any{"input": input}, reqCfg.headers, &result)
	if err != nil {
		return nil, err
	}

	return result.CreateAlertComment.Comment, nil
}

// updatedAlerts is the wire shape shared by the alert update mutations.
type updatedAlerts struct {
	Alerts []*Alert `json:"alerts"`
}

// Update changes the status and/or assignee of the given alerts.
func (s *alertService) Update(ctx context.Context, alertIDs []string, req *UpdateAlertsRequest, opts ...RequestOption) ([]*Alert, error) {
	if req == nil || (req.Status == "" && req.Assignee == "") {
		return nil, &ValidationError{Message: "update request must set a status or an assignee"}
	}

	if req.Status != "" {
		switch AlertStatus(strings.ToUpper(string(req.Status))) {
		case AlertOpen, AlertTriaged, AlertResolved, AlertClosed:
		default:
			return nil, &ValidationError{Message: "invalid alert status: " + string(req.Status)}
		}
	}

	// Alert IDs can't have dashes.
	ids := make([]string, 0, len(alertIDs))
	for _, alertID := range alertIDs {
		compact, err := CompactID(alertID)
		if err != nil {
			return nil, err
		}
		ids = append(ids, compact)
	}

	reqCfg := newRequestConfig()
	reqCfg.apply(opts...)

	// Merge the results of the two mutations per alert ID, keeping the most
	// recent observation of each alert.
	merged := make(map[string]*Alert)
	order := make([]string, 0, len(ids))
	record := func(alerts []*Alert) {
		for _, alert := range alerts {
			if _, seen := merged[alert.ID]; !seen {
				order = append(order, alert.ID)
			}
			merged[alert.ID] = alert
		}
	}

	if req.Assignee != "" {
		// The assignee may be referenced by email or by ID; the backend has
		// a separate mutation for each.
		operation := "alerts/update_assignee_by_id"
		field := "assigneeId"
		envelope := "updateAlertsAssigneeById"
		if emailPattern.MatchString(req.Assignee) {
			operation = "alerts/update_assignee_by_email"
			field = "assigneeEmail"
			envelope = "updateAlertsAssigneeByEmail"
		}

		var result map[string]updatedAlerts
		input := map[string]any{"ids": ids, field: req.Assignee}
		err := s.gql.execute(ctx, operation, map[string]any{"input": input}, reqCfg.headers, &result)
		if err != nil {
			return nil, err
		}
		record(result[envelope].Alerts)
	}

	if req.Status != "" {
		status := strings.ToUpper(string(req.Status))
		var result map[string]updatedAlerts
		input := map[string]any{"ids": ids, "status": status}
		err := s.gql.execute(ctx, "alerts/update_status", map[string]any{"input": input}, reqCfg.headers, &result)
		if err != nil {
			return nil, err
		}
		record(result["updateAlertStatusById"].Alerts)
	}

	alerts := make([]*Alert, 0, len(order))
	for _, id := range order {
		alerts = append(alerts, merged[id])
	}
	return alerts, nil
}
