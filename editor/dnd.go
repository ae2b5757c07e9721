package editor

import (
	"go.uber.org/zap"

	"wcb/common"
	"wcb/document"
)

// Fractions of target height which make before and after zones, the rest is
// inside.
const (
	beforeZone = 0.25
	afterZone  = 0.75
)

// DropZone classifies pointer y coordinate against target box starting at top
// with given height.
func DropZone(y, top, height float64) common.DropPosition {
	if height <= 0 {
		return common.DropPositionInside
	}
	switch rel := (y - top) / height; {
	case rel < beforeZone:
		return common.DropPositionBefore
	case rel > afterZone:
		return common.DropPositionAfter
	default:
		return common.DropPositionInside
	}
}

type drag struct {
	source   string
	target   string
	position common.DropPosition
}

// Dragging returns id of element being dragged, empty if none.
func (s *Session) Dragging() string { return s.drag.source }

// DropTarget returns current drop target and position.
func (s *Session) DropTarget() (string, common.DropPosition) {
	return s.drag.target, s.drag.position
}

// DragStart begins dragging element id. Root cannot be dragged.
func (s *Session) DragStart(id string) bool {
	root := s.doc.TreeData
	if root == nil || root.ID == id || document.Find(root, id) == nil {
		return false
	}
	s.drag = drag{source: id}
	return true
}

// DragOver updates drop target from pointer position over element targetID.
// Hovering dragged element itself changes nothing.
func (s *Session) DragOver(targetID string, y, top, height float64) bool {
	if s.drag.source == "" || targetID == s.drag.source {
		return false
	}
	s.drag.target = targetID
	s.drag.position = DropZone(y, top, height)
	return true
}

// Drop moves dragged element to current drop target and ends dragging.
func (s *Session) Drop() document.Result {
	d := s.drag
	s.drag = drag{}
	if d.source == "" || d.target == "" {
		return document.Result{}
	}
	s.log.Debug("Drop", zap.String("source", d.source), zap.String("target", d.target), zap.Stringer("position", d.position))
	return s.MoveElement(d.source, d.target, d.position)
}

// DragCancel ends dragging without changes.
func (s *Session) DragCancel() { s.drag = drag{} }
