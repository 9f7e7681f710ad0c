package server

import (
	"errors"
	"fmt"
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/karolswdev/reqsmith/internal/pipeline"
	"github.com/karolswdev/reqsmith/internal/project"
	"github.com/karolswdev/reqsmith/internal/session"
	"github.com/karolswdev/reqsmith/internal/tracker"
)

type generateReq struct {
	Name        string `form:"name" json:"name"`
	Description string `form:"description" json:"description"`
	Industry    string `form:"industry" json:"industry"`
	Methodology string `form:"methodology" json:"methodology"`
	Technology  string `form:"technology" json:"technology"`
}

type ticketReq struct {
	Summary string `form:"summary" json:"summary"`
	Force   bool   `form:"force" json:"force"`
}

// pageData feeds templates/index.html.
type pageData struct {
	Options        project.Options
	Form           generateReq
	Document       *session.Document
	Ticket         *tracker.TicketResult
	TrackerEnabled bool
	Notice         string
	Error          string
}

// wantsJSON prefers HTML for browsers and JSON for API clients.
func wantsJSON(c *gin.Context) bool {
	if c.ContentType() == gin.MIMEJSON {
		return true
	}
	return c.NegotiateFormat(gin.MIMEHTML, gin.MIMEJSON) == gin.MIMEJSON
}

func defaultForm() generateReq {
	opts := project.AllOptions()
	return generateReq{
		Industry:    string(opts.Industries[0]),
		Methodology: string(opts.Methodologies[0]),
		Technology:  string(opts.Technologies[0]),
	}
}

// page loads the session's document for rendering. A store failure is shown
// as a banner rather than failing the page.
func (s *Server) page(c *gin.Context, form generateReq) pageData {
	data := pageData{
		Options:        project.AllOptions(),
		Form:           form,
		TrackerEnabled: s.pipeline.TrackerEnabled(),
	}
	doc, err := s.pipeline.Document(c.Request.Context(), currentSession(c))
	switch {
	case err == nil:
		data.Document = doc
	case !errors.Is(err, pipeline.ErrNoDocument):
		_, data.Error = errorResponse(err)
	}
	return data
}

func (s *Server) renderError(c *gin.Context, err error, form generateReq) {
	status, msg := errorResponse(err)
	log.Warn().Err(err).Str("request_id", c.GetString(ctxRequestID)).Int("status", status).Msg("Request failed")
	if wantsJSON(c) {
		c.JSON(status, gin.H{"ok": false, "error": msg})
		return
	}
	data := s.page(c, form)
	data.Error = msg
	c.HTML(status, "index.html", data)
}

func (s *Server) index(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", s.page(c, defaultForm()))
}

func (s *Server) generate(c *gin.Context) {
	var in generateReq
	if err := c.ShouldBind(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	req, err := project.NewRequest(in.Name, in.Description, in.Industry, in.Methodology, in.Technology)
	if err != nil {
		s.renderError(c, err, in)
		return
	}
	// Keep the canonical labels so the form re-selects them.
	in.Industry, in.Methodology, in.Technology = string(req.Industry), string(req.Methodology), string(req.Technology)

	doc, err := s.pipeline.Generate(c.Request.Context(), currentSession(c), req)
	if err != nil {
		s.renderError(c, err, in)
		return
	}

	if wantsJSON(c) {
		c.JSON(http.StatusOK, gin.H{"ok": true, "document": doc})
		return
	}
	data := s.page(c, in)
	data.Notice = "Requirements generated."
	c.HTML(http.StatusOK, "index.html", data)
}

func (s *Server) export(c *gin.Context) {
	file, err := s.pipeline.Export(c.Request.Context(), currentSession(c))
	if err != nil {
		s.renderError(c, err, defaultForm())
		return
	}
	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": file.Name}))
	c.Data(http.StatusOK, file.MIMEType, file.Data)
}

func (s *Server) ticket(c *gin.Context) {
	var in ticketReq
	if err := c.ShouldBind(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	result, err := s.pipeline.FileTicket(c.Request.Context(), currentSession(c), in.Summary, in.Force)
	if err != nil {
		s.renderError(c, err, defaultForm())
		return
	}

	if wantsJSON(c) {
		c.JSON(http.StatusOK, gin.H{"ok": true, "ticket": result})
		return
	}
	data := s.page(c, defaultForm())
	data.Ticket = result
	if result.AlreadyFiled {
		data.Notice = fmt.Sprintf("A ticket was already filed for this document: %s", result.Key)
	} else {
		data.Notice = fmt.Sprintf("Jira ticket created: %s", result.Key)
	}
	c.HTML(http.StatusOK, "index.html", data)
}

func (s *Server) options(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true, "options": project.AllOptions()})
}

func (s *Server) document(c *gin.Context) {
	doc, err := s.pipeline.Document(c.Request.Context(), currentSession(c))
	if err != nil {
		status, msg := errorResponse(err)
		c.JSON(status, gin.H{"ok": false, "error": msg})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "document": doc})
}
