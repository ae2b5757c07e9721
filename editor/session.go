package editor

import (
	"fmt"

	"go.uber.org/zap"

	"wcb/common"
	"wcb/document"
	"wcb/selection"
)

// Notifier receives user facing notifications.
type Notifier interface {
	Notify(document.Notification)
}

// NotifierFunc adapts function to Notifier.
type NotifierFunc func(document.Notification)

func (f NotifierFunc) Notify(n document.Notification) { f(n) }

// ConfirmFunc asks user to confirm destructive operation.
type ConfirmFunc func(message string) bool

// Session is state of one editing session: current document snapshot,
// selection overlay and drag state. It is not safe for concurrent use, edits
// are expected to come from a single event loop.
type Session struct {
	engine   *document.Engine
	overlay  *selection.Overlay
	doc      *document.Document
	drag     drag
	notifier Notifier
	confirm  ConfirmFunc
	log      *zap.Logger
}

// Option configures session.
type Option func(*Session)

// WithNotifier sets notification sink. Notifications are dropped by default.
func WithNotifier(n Notifier) Option {
	return func(s *Session) { s.notifier = n }
}

// WithConfirm sets confirmation gate for element deletion. Without it
// deletions are always refused.
func WithConfirm(f ConfirmFunc) Option {
	return func(s *Session) { s.confirm = f }
}

// NewSession starts editing doc.
func NewSession(engine *document.Engine, overlay *selection.Overlay, doc *document.Document, log *zap.Logger, opts ...Option) *Session {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Session{
		engine:   engine,
		overlay:  overlay,
		doc:      doc,
		notifier: NotifierFunc(func(document.Notification) {}),
		confirm:  func(string) bool { return false },
		log:      log.Named("session"),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Document returns current snapshot, highlight included.
func (s *Session) Document() *document.Document { return s.doc }

// Snapshot returns current document without selection highlight, suitable for
// saving and export.
func (s *Session) Snapshot() *document.Document {
	return s.doc.WithTree(s.overlay.Strip(s.doc.TreeData))
}

// Overlay returns selection overlay of the session.
func (s *Session) Overlay() *selection.Overlay { return s.overlay }

func (s *Session) setTree(root *document.TreeNode, res document.Result) document.Result {
	if root != s.doc.TreeData {
		s.doc = s.doc.WithTree(root)
		s.overlay.Refresh(root)
	}
	return s.report(res)
}

func (s *Session) setCss(t *document.CssTree, res document.Result) document.Result {
	if t != s.doc.CssData {
		s.doc = s.doc.WithCss(t)
	}
	return s.report(res)
}

func (s *Session) report(res document.Result) document.Result {
	if res.Notification != nil {
		s.notifier.Notify(*res.Notification)
	}
	return res
}

// Select moves selection highlight to element id.
func (s *Session) Select(id string) {
	root := s.overlay.SelectNode(s.doc.TreeData, id)
	if root != s.doc.TreeData {
		s.doc = s.doc.WithTree(root)
	}
}

// ClearSelection removes selection highlight.
func (s *Session) ClearSelection() {
	if root := s.overlay.Clear(s.doc.TreeData); root != s.doc.TreeData {
		s.doc = s.doc.WithTree(root)
	}
}

func (s *Session) CreateElement(parentID string) document.Result {
	return s.setTree(s.engine.CreateElement(s.doc.TreeData, parentID))
}

// DeleteElement removes element after user confirmed it.
func (s *Session) DeleteElement(id string) document.Result {
	n := document.Find(s.doc.TreeData, id)
	if n == nil {
		return document.Result{}
	}
	if !s.confirm(fmt.Sprintf("Delete <%s> element and everything inside it?", n.Tag)) {
		s.log.Debug("Deletion not confirmed", zap.String("id", id))
		return document.Result{}
	}
	return s.setTree(s.engine.DeleteElement(s.doc.TreeData, id))
}

func (s *Session) MoveElement(sourceID, targetID string, pos common.DropPosition) document.Result {
	return s.setTree(s.engine.MoveElement(s.doc.TreeData, sourceID, targetID, pos))
}

func (s *Session) UpdateTag(id, tag string) document.Result {
	return s.setTree(s.engine.UpdateTag(s.doc.TreeData, id, tag))
}

func (s *Session) UpdateTitle(id, title string) document.Result {
	return s.setTree(s.engine.UpdateTitle(s.doc.TreeData, id, title))
}

func (s *Session) UpdateContent(id, content string) document.Result {
	return s.setTree(s.engine.UpdateContent(s.doc.TreeData, id, content))
}

func (s *Session) SetAttribute(id, name, val string) document.Result {
	return s.setTree(s.engine.SetAttribute(s.doc.TreeData, id, name, val))
}

func (s *Session) RemoveAttribute(id, name string) document.Result {
	return s.setTree(s.engine.RemoveAttribute(s.doc.TreeData, id, name))
}

// SetInlineStyle sets inline CSS property of element. Keys in the selection
// overlay namespace are refused.
func (s *Session) SetInlineStyle(id, property, val string) document.Result {
	if selection.Reserved(property) {
		s.log.Debug("Reserved style key", zap.String("id", id), zap.String("property", property))
		return s.report(document.Result{
			Notification: &document.Notification{
				Type:     common.NotificationTypeWarning,
				Message:  fmt.Sprintf("%q is reserved for selection highlight", property),
				Duration: document.DefaultNotificationDuration,
			},
		})
	}
	return s.setTree(s.engine.SetInlineStyle(s.doc.TreeData, id, property, val))
}

// RemoveInlineStyle removes inline CSS properties of element, overlay keys are
// left alone.
func (s *Session) RemoveInlineStyle(id string, properties ...string) document.Result {
	kept := properties[:0:0]
	for _, p := range properties {
		if !selection.Reserved(p) {
			kept = append(kept, p)
		}
	}
	return s.setTree(s.engine.RemoveInlineStyle(s.doc.TreeData, id, kept...))
}

func (s *Session) AssignClass(id, classID string) document.Result {
	return s.setTree(s.engine.AssignClass(s.doc.TreeData, id, classID))
}

func (s *Session) UnassignClass(id, classID string) document.Result {
	return s.setTree(s.engine.UnassignClass(s.doc.TreeData, id, classID))
}

// NewClass adds class with fresh id and returns it.
func (s *Session) NewClass() (*document.CssClass, document.Result) {
	t, c, res := s.engine.NewClass(s.doc.CssData)
	return c, s.setCss(t, res)
}

func (s *Session) RenameClass(id, name string) document.Result {
	return s.setCss(s.engine.RenameClass(s.doc.CssData, id, name))
}

// RemoveClass removes class and all references to it.
func (s *Session) RemoveClass(id string) document.Result {
	d, res := s.engine.RemoveClass(s.doc, id)
	if d != s.doc {
		s.doc = d
		s.overlay.Refresh(d.TreeData)
	}
	return s.report(res)
}

func (s *Session) SetCategories(id string, categories []string) document.Result {
	return s.setCss(s.engine.SetCategories(s.doc.CssData, id, categories))
}

func (s *Session) AddProperty(classID, property string) document.Result {
	return s.setCss(s.engine.AddProperty(s.doc.CssData, classID, property))
}

func (s *Session) RemoveProperty(classID, propertyID string) document.Result {
	return s.setCss(s.engine.RemoveProperty(s.doc.CssData, classID, propertyID))
}

func (s *Session) UpdatePropertyValue(classID string, idPath []string, raw any) document.Result {
	return s.setCss(s.engine.UpdatePropertyValue(s.doc.CssData, classID, idPath, raw))
}
