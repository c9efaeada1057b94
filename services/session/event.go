package session

import (
	"github.com/pkg/errors"
	"github.com/videoteca/cloud-import/models"
	"github.com/videoteca/cloud-import/services/common"
	"github.com/videoteca/cloud-import/services/importer"
)

// EventRequest is the wire form of a user action on an import session.
type EventRequest struct {
	Type        string `json:"type"`
	TeamID      string `json:"team_id,omitempty"`
	CategoryID  string `json:"category_id,omitempty"`
	PlayerID    string `json:"player_id,omitempty"`
	ContentType string `json:"content_type,omitempty"`
	Query       string `json:"query,omitempty"`
	VideoID     string `json:"video_id,omitempty"`
	Description string `json:"description,omitempty"`
}

func (r EventRequest) Event() (importer.Event, error) {
	switch r.Type {
	case "select_team":
		return importer.TeamSelected{TeamID: r.TeamID}, nil
	case "select_category":
		return importer.CategorySelected{CategoryID: r.CategoryID}, nil
	case "select_player":
		return importer.PlayerSelected{PlayerID: r.PlayerID}, nil
	case "select_content_type":
		ct := models.ContentType(r.ContentType)
		if !ct.Valid() {
			return nil, errors.Wrapf(common.ErrValidation, "unknown content type %q", r.ContentType)
		}
		return importer.ContentTypeSelected{ContentType: ct}, nil
	case "search":
		return importer.QueryChanged{Query: r.Query}, nil
	case "select_video":
		if r.VideoID == "" {
			return nil, common.Validation("video_id")
		}
		return importer.VideoSelected{ExternalID: r.VideoID}, nil
	case "edit_description":
		return importer.DescriptionEdited{Description: r.Description}, nil
	case "next_page":
		return importer.NextPage{}, nil
	case "previous_page":
		return importer.PreviousPage{}, nil
	case "reload":
		return importer.Reload{}, nil
	case "confirm":
		return importer.AssignConfirmed{}, nil
	case "":
		return nil, common.Validation("type")
	}
	return nil, errors.Wrapf(common.ErrValidation, "unknown event type %q", r.Type)
}
