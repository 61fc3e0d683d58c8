package mailbox

import (
	"fmt"
	"strings"
)

// Role is a well-known folder purpose the message store can resolve to a
// concrete folder independently of its display name.
type Role string

const (
	RoleInbox        Role = "Inbox"
	RoleSentItems    Role = "SentItems"
	RoleDeletedItems Role = "DeletedItems"
	RoleDrafts       Role = "Drafts"
	RoleOutbox       Role = "Outbox"
	RoleContacts     Role = "Contacts"
	RoleCalendar     Role = "Calendar"
	RoleTasks        Role = "Tasks"
	RoleJunkEmail    Role = "JunkEmail"
	RoleNotes        Role = "Notes"
	RoleJournal      Role = "Journal"
)

// Roles lists every well-known role, in the fixed order they are processed.
var Roles = []Role{
	RoleInbox,
	RoleSentItems,
	RoleDeletedItems,
	RoleDrafts,
	RoleOutbox,
	RoleContacts,
	RoleCalendar,
	RoleTasks,
	RoleJunkEmail,
	RoleNotes,
	RoleJournal,
}

func ParseRole(value string) (Role, error) {
	for _, role := range Roles {
		if strings.EqualFold(string(role), value) {
			return role, nil
		}
	}
	return "", fmt.Errorf("unknown well-known folder role %q", value)
}

func (r Role) String() string {
	return string(r)
}
