package importer

import (
	"github.com/videoteca/cloud-import/models"
	"github.com/videoteca/cloud-import/services/youtube"
)

type Event interface {
	event()
}

type TeamSelected struct {
	TeamID string
}

type CategorySelected struct {
	CategoryID string
}

type PlayerSelected struct {
	PlayerID string
}

type ContentTypeSelected struct {
	ContentType models.ContentType
}

type Reload struct{}

type NextPage struct{}

type PreviousPage struct{}

type QueryChanged struct {
	Query string
}

type VideoSelected struct {
	ExternalID string
}

type DescriptionEdited struct {
	Description string
}

type AssignConfirmed struct{}

type ChannelResolved struct {
	Request   Request
	ChannelID string
	Err       error
}

type VideosLoaded struct {
	Request Request
	Page    *youtube.VideoPage
	Err     error
}

type DuplicateChecked struct {
	Request    Request
	Assignment Assignment
	Exists     bool
	Err        error
}

type AssignmentInserted struct {
	Request    Request
	Assignment Assignment
	Err        error
}

func (TeamSelected) event()        {}
func (CategorySelected) event()    {}
func (PlayerSelected) event()      {}
func (ContentTypeSelected) event() {}
func (Reload) event()              {}
func (NextPage) event()            {}
func (PreviousPage) event()        {}
func (QueryChanged) event()        {}
func (VideoSelected) event()       {}
func (DescriptionEdited) event()   {}
func (AssignConfirmed) event()     {}
func (ChannelResolved) event()     {}
func (VideosLoaded) event()        {}
func (DuplicateChecked) event()    {}
func (AssignmentInserted) event()  {}

// Command is a side effect requested by a transition.
type Command interface {
	command()
}

type ResolveChannel struct {
	Request Request
}

type ListVideos struct {
	Request  Request
	PageSize int64
}

type CheckDuplicate struct {
	Request    Request
	Assignment Assignment
}

type InsertAssignment struct {
	Request    Request
	Assignment Assignment
}

type Completed struct {
	Assignment Assignment
}

func (ResolveChannel) command()   {}
func (ListVideos) command()       {}
func (CheckDuplicate) command()   {}
func (InsertAssignment) command() {}
func (Completed) command()        {}
