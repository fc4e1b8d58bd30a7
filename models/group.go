package models

// GroupsTable is the DynamoDB table name for chat groups
const GroupsTable = "Groups"

// Group types (the general department-wide group plus lecturer-created ones)
const (
	GroupTypeGeneral = "general"
	GroupTypeCustom  = "custom"
)

// GroupMember ties a user id to its account kind inside a group's member
// list. The kind is denormalized here so fan-out does not need a directory
// lookup per member.
type GroupMember struct {
	UserID   string `dynamodbav:"userId" json:"userId"`
	Kind     string `dynamodbav:"userType" json:"userType"`
	JoinedAt string `dynamodbav:"joinedAt" json:"joinedAt"`
}

// Group is a chat group. Membership is owned by the group management flow;
// the messaging core reads members and only ever writes LastMessageID.
type Group struct {
	GroupID       string        `dynamodbav:"groupId" json:"groupId"`
	Name          string        `dynamodbav:"name" json:"name"`
	Description   string        `dynamodbav:"description,omitempty" json:"description,omitempty"`
	CreatorID     string        `dynamodbav:"creatorId" json:"creatorId"`
	Members       []GroupMember `dynamodbav:"members" json:"members"`
	GroupType     string        `dynamodbav:"groupType" json:"groupType"`
	IsActive      bool          `dynamodbav:"isActive" json:"isActive"`
	LastMessageID string        `dynamodbav:"lastMessageId,omitempty" json:"lastMessageId,omitempty"`
	CreatedAt     string        `dynamodbav:"createdAt" json:"createdAt"`
}

// HasMember reports whether the given user id is in the member list.
func (g Group) HasMember(userID string) bool {
	for _, m := range g.Members {
		if m.UserID == userID {
			return true
		}
	}
	return false
}
