package mailbox

// FolderID uniquely and stably addresses a folder for the duration of a run.
// It is owned by the store: the value is opaque and must not be cached across runs.
type FolderID string

// ItemID addresses a single leaf item (message) inside a folder.
type ItemID string

// Folder is a transient handle to a folder of the message store.
type Folder struct {
	ID   FolderID
	Name string
	// ParentID is the identifier of the containing folder. A folder whose
	// ParentID equals its own ID is the top of the hierarchy.
	ParentID FolderID
}

// IsRoot reports whether the folder sits at the top of the hierarchy.
func (f Folder) IsRoot() bool {
	return f.ID == f.ParentID
}
