package models

// Kind names one of the owner reference sets kept on a user.
type Kind string

const (
	KindFolder Kind = "folder"
	KindNote   Kind = "note"
)

func (f *Folder) ResourceID() string      { return f.ID }
func (f *Folder) SetResourceID(id string) { f.ID = id }

func (n *Note) ResourceID() string      { return n.ID }
func (n *Note) SetResourceID(id string) { n.ID = id }
