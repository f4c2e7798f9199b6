// Package jira provides a minimal REST client for issue lookup and the
// normalized issue model consumed by the traversal engine.
package jira

// Direction indicates which side of an issue link the current issue is on.
type Direction string

const (
	// Outward links point from the fetched issue to the target
	// (e.g. "blocks").
	Outward Direction = "outward"
	// Inward links point from the target to the fetched issue
	// (e.g. "is blocked by").
	Inward Direction = "inward"
)

// Link is a typed, directional relationship declared on an issue.
type Link struct {
	Type       string    // direction-specific label, e.g. "blocks" or "is blocked by"
	Direction  Direction
	TargetKey  string
	TargetType string // issue type of the target, when the payload carries it
}

// SubtaskRef is a child issue reference declared on a parent.
type SubtaskRef struct {
	Key  string
	Type string // issue type, when the payload carries it
}

// Issue is the normalized issue record decoded once at the client boundary.
// Immutable after decode; ownership passes to the traversal's visited set.
type Issue struct {
	Key       string
	Summary   string
	Status    string // display name, e.g. "In Progress"
	Type      string // issue type name, e.g. "Story"
	Closed    bool   // status category is "done"
	IsSubtask bool
	Links     []Link       // in document order
	Subtasks  []SubtaskRef // child issues, in document order
}

// Remote API document shapes. The issuelinks and subtasks arrays may be
// absent; pointers distinguish a missing side of a link from an empty one.

type issueDoc struct {
	Key    string      `json:"key"`
	Fields issueFields `json:"fields"`
}

type issueFields struct {
	Summary    string         `json:"summary"`
	Status     statusDoc      `json:"status"`
	IssueType  issueTypeDoc   `json:"issuetype"`
	IssueLinks []issueLinkDoc `json:"issuelinks"`
	Subtasks   []issueRefDoc  `json:"subtasks"`
}

type statusDoc struct {
	Name     string            `json:"name"`
	Category statusCategoryDoc `json:"statusCategory"`
}

type statusCategoryDoc struct {
	Key  string `json:"key"`
	Name string `json:"name"`
}

type issueTypeDoc struct {
	Name    string `json:"name"`
	Subtask bool   `json:"subtask"`
}

type issueLinkDoc struct {
	Type         linkTypeDoc  `json:"type"`
	OutwardIssue *issueRefDoc `json:"outwardIssue"`
	InwardIssue  *issueRefDoc `json:"inwardIssue"`
}

type linkTypeDoc struct {
	Name    string `json:"name"`
	Inward  string `json:"inward"`
	Outward string `json:"outward"`
}

type issueRefDoc struct {
	Key    string         `json:"key"`
	Fields issueRefFields `json:"fields"`
}

// issueRefFields is the abbreviated field set Jira embeds in link and
// subtask references.
type issueRefFields struct {
	IssueType issueTypeDoc `json:"issuetype"`
}

type searchDoc struct {
	Issues []issueDoc `json:"issues"`
}

// statusCategoryDone is Jira's normalized category key for closed/done states.
const statusCategoryDone = "done"

// normalize converts a decoded document into the immutable Issue record.
// Links missing both sides (malformed) are dropped; link labels use the
// direction-specific name as the server presents them.
func (d *issueDoc) normalize() *Issue {
	issue := &Issue{
		Key:       d.Key,
		Summary:   d.Fields.Summary,
		Status:    d.Fields.Status.Name,
		Type:      d.Fields.IssueType.Name,
		Closed:    d.Fields.Status.Category.Key == statusCategoryDone,
		IsSubtask: d.Fields.IssueType.Subtask,
	}

	for _, link := range d.Fields.IssueLinks {
		switch {
		case link.OutwardIssue != nil && link.OutwardIssue.Key != "":
			issue.Links = append(issue.Links, Link{
				Type:       link.Type.Outward,
				Direction:  Outward,
				TargetKey:  link.OutwardIssue.Key,
				TargetType: link.OutwardIssue.Fields.IssueType.Name,
			})
		case link.InwardIssue != nil && link.InwardIssue.Key != "":
			issue.Links = append(issue.Links, Link{
				Type:       link.Type.Inward,
				Direction:  Inward,
				TargetKey:  link.InwardIssue.Key,
				TargetType: link.InwardIssue.Fields.IssueType.Name,
			})
		}
	}

	for _, sub := range d.Fields.Subtasks {
		if sub.Key != "" {
			issue.Subtasks = append(issue.Subtasks, SubtaskRef{
				Key:  sub.Key,
				Type: sub.Fields.IssueType.Name,
			})
		}
	}

	return issue
}
