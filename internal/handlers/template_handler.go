package handlers

import (
	"html/template"
	"io/fs"
	"log"
	"net/http"
	"sort"
	"time"

	"github.com/PiusTetteh/301-GroupProject/internal/models"
	"github.com/PiusTetteh/301-GroupProject/internal/service"
	"github.com/PiusTetteh/301-GroupProject/internal/state"
)

// CoreView is one core prepared for template iteration, ordered by id.
type CoreView struct {
	ID        int
	Load      int
	Processes []int
}

type PageData struct {
	Title        string
	PageTitle    string
	Running      bool
	StartTime    string
	CoreCount    int
	ProcessCount int
	Cores        []CoreView
	RecentLogs   []models.LogEntry
}

type TemplateHandler struct {
	templates  *template.Template
	store      *state.Store
	supervisor *service.Supervisor
}

func NewTemplateHandler(templatesFS fs.FS, store *state.Store, supervisor *service.Supervisor) (*TemplateHandler, error) {
	tmpl, err := template.ParseFS(templatesFS, "*.html")
	if err != nil {
		return nil, err
	}

	return &TemplateHandler{
		templates:  tmpl,
		store:      store,
		supervisor: supervisor,
	}, nil
}

// buildPageData renders the page from the live store; the page then keeps
// itself current over the websocket feed.
func (th *TemplateHandler) buildPageData(pageTitle string) PageData {
	status := th.store.Status()
	cores := th.store.Cores()

	views := make([]CoreView, 0, len(cores))
	for id, rec := range cores {
		views = append(views, CoreView{ID: id, Load: rec.Load, Processes: rec.Processes})
	}
	sort.Slice(views, func(i, j int) bool { return views[i].ID < views[j].ID })

	startTime := ""
	if status.StartTime != nil {
		startTime = status.StartTime.Format(time.RFC1123)
	}

	return PageData{
		Title:        "Multikernel Monitor - " + pageTitle,
		PageTitle:    pageTitle,
		Running:      status.Running,
		StartTime:    startTime,
		CoreCount:    status.Cores,
		ProcessCount: status.Processes,
		Cores:        views,
		RecentLogs:   th.supervisor.Logs(10),
	}
}

func (th *TemplateHandler) ServeTemplate(templateName, pageTitle string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data := th.buildPageData(pageTitle)

		w.Header().Set("Content-Type", "text/html; charset=utf-8")

		if err := th.templates.ExecuteTemplate(w, templateName+".html", data); err != nil {
			log.Printf("Error executing template %s: %v", templateName, err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
	}
}
