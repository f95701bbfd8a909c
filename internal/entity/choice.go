package entity

import (
	"encoding/json"
	"strings"
)

// Choice-backed fields are stored as short codes and rendered as display labels.
// Decoding accepts either form; an unknown value is kept verbatim so binding
// validation can reject it against the allowed codes.

func choiceLabel[T ~string](v T, labels map[T]string) string {
	if label, ok := labels[v]; ok {
		return label
	}
	return string(v)
}

func parseChoice[T ~string](s string, labels map[T]string) (T, bool) {
	for code, label := range labels {
		if strings.EqualFold(s, string(code)) || strings.EqualFold(s, label) {
			return code, true
		}
	}
	return T(s), false
}

func unmarshalChoice[T ~string](data []byte, labels map[T]string) (T, error) {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return "", err
	}
	v, _ := parseChoice(s, labels)
	return v, nil
}

type Permission string

const (
	PermissionCreator     Permission = "CREA"
	PermissionContributor Permission = "CONT"
)

var permissionLabels = map[Permission]string{
	PermissionCreator:     "Créateur",
	PermissionContributor: "Contributeur",
}

func (p Permission) Label() string { return choiceLabel(p, permissionLabels) }

func (p Permission) Valid() bool {
	_, ok := permissionLabels[p]
	return ok
}

func (p Permission) MarshalJSON() ([]byte, error) { return json.Marshal(p.Label()) }

func (p *Permission) UnmarshalJSON(data []byte) (err error) {
	*p, err = unmarshalChoice(data, permissionLabels)
	return err
}

type Role string

const (
	RoleProjectManager Role = "PM"
	RoleProjectStaff   Role = "PS"
)

var roleLabels = map[Role]string{
	RoleProjectManager: "Project manager",
	RoleProjectStaff:   "Project staff",
}

func (r Role) Label() string { return choiceLabel(r, roleLabels) }

func (r Role) Valid() bool {
	_, ok := roleLabels[r]
	return ok
}

func (r Role) MarshalJSON() ([]byte, error) { return json.Marshal(r.Label()) }

func (r *Role) UnmarshalJSON(data []byte) (err error) {
	*r, err = unmarshalChoice(data, roleLabels)
	return err
}

type Tag string

const (
	TagBug     Tag = "BUG"
	TagImprove Tag = "IMP"
	TagTask    Tag = "TSK"
)

var tagLabels = map[Tag]string{
	TagBug:     "BUG",
	TagImprove: "AMÉLIORATION",
	TagTask:    "TÂCHE",
}

func (t Tag) Label() string { return choiceLabel(t, tagLabels) }

func (t Tag) Valid() bool {
	_, ok := tagLabels[t]
	return ok
}

func (t Tag) MarshalJSON() ([]byte, error) { return json.Marshal(t.Label()) }

func (t *Tag) UnmarshalJSON(data []byte) (err error) {
	*t, err = unmarshalChoice(data, tagLabels)
	return err
}

type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MED"
	PriorityHigh   Priority = "SUP"
)

var priorityLabels = map[Priority]string{
	PriorityLow:    "FAIBLE",
	PriorityMedium: "MOYENNE",
	PriorityHigh:   "ÉLEVÉE",
}

func (p Priority) Label() string { return choiceLabel(p, priorityLabels) }

func (p Priority) Valid() bool {
	_, ok := priorityLabels[p]
	return ok
}

func (p Priority) MarshalJSON() ([]byte, error) { return json.Marshal(p.Label()) }

func (p *Priority) UnmarshalJSON(data []byte) (err error) {
	*p, err = unmarshalChoice(data, priorityLabels)
	return err
}

type Status string

const (
	StatusTodo  Status = "TOD"
	StatusDoing Status = "DOI"
	StatusDone  Status = "DON"
)

var statusLabels = map[Status]string{
	StatusTodo:  "À faire",
	StatusDoing: "En cours",
	StatusDone:  "Terminé",
}

func (s Status) Label() string { return choiceLabel(s, statusLabels) }

func (s Status) Valid() bool {
	_, ok := statusLabels[s]
	return ok
}

func (s Status) MarshalJSON() ([]byte, error) { return json.Marshal(s.Label()) }

func (s *Status) UnmarshalJSON(data []byte) (err error) {
	*s, err = unmarshalChoice(data, statusLabels)
	return err
}
