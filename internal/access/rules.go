package access

// Requirement is what an actor must be for a rule to pass.
type Requirement int

const (
	RequireNobody Requirement = iota
	RequireAuthenticated
	RequireContributor
	RequireCreator
	RequireAuthor
	RequireAuthorOrAssignee
)

type ruleTable map[Resource]map[Action]Requirement

func (t ruleTable) lookup(r Resource, a Action) (Requirement, bool) {
	actions, ok := t[r]
	if !ok {
		return RequireNobody, false
	}
	req, ok := actions[a]
	return req, ok && req != RequireNobody
}

// Rows missing from a table deny.
var collectionRules = ruleTable{
	ResourceProject: {
		ActionList:   RequireAuthenticated,
		ActionCreate: RequireAuthenticated,
	},
	ResourceContributor: {
		ActionList:   RequireContributor,
		ActionCreate: RequireCreator,
	},
	ResourceIssue: {
		ActionList:   RequireContributor,
		ActionCreate: RequireContributor,
	},
	ResourceComment: {
		ActionList:   RequireContributor,
		ActionCreate: RequireContributor,
	},
}

var objectRules = ruleTable{
	ResourceProject: {
		ActionList:     RequireContributor,
		ActionRetrieve: RequireContributor,
		ActionUpdate:   RequireCreator,
		ActionDelete:   RequireCreator,
	},
	ResourceContributor: {
		ActionList:     RequireContributor,
		ActionRetrieve: RequireContributor,
		ActionDelete:   RequireCreator,
	},
	ResourceIssue: {
		ActionList:     RequireContributor,
		ActionRetrieve: RequireContributor,
		ActionUpdate:   RequireAuthorOrAssignee,
		ActionDelete:   RequireAuthorOrAssignee,
	},
	ResourceComment: {
		ActionList:     RequireContributor,
		ActionRetrieve: RequireContributor,
		ActionUpdate:   RequireAuthor,
		ActionDelete:   RequireAuthor,
	},
}
