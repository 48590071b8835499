package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"agent-console/chart"
	"agent-console/internal/app"
	"agent-console/models"
	"agent-console/observability"
	"agent-console/templates"

	"github.com/gorilla/websocket"
)

const (
	socketWriteWait  = 10 * time.Second
	socketPongWait   = 90 * time.Second
	socketPingPeriod = 45 * time.Second
	socketBuffer     = 256
	rateLimitNotice  = "Too many requests, please wait before analyzing again"
)

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
}

// clientMessage is sent by the page script
type clientMessage struct {
	Type   string `json:"type"`
	Symbol string `json:"symbol"`
	Period string `json:"period"`
}

// viewMessage is one page update. The page script applies it to the element
// named by ID.
type viewMessage struct {
	Type     string        `json:"type"`
	ID       string        `json:"id,omitempty"`
	Text     string        `json:"text,omitempty"`
	HTML     string        `json:"html,omitempty"`
	Class    string        `json:"class,omitempty"`
	Progress int           `json:"progress,omitempty"`
	Enabled  bool          `json:"enabled,omitempty"`
	Figure   *chart.Figure `json:"figure,omitempty"`
}

// socketView forwards console updates to the page over the websocket.
// Sends block until the writer takes the message or the socket closes.
type socketView struct {
	out  chan viewMessage
	done chan struct{}
}

func newSocketView() *socketView {
	return &socketView{
		out:  make(chan viewMessage, socketBuffer),
		done: make(chan struct{}),
	}
}

func (v *socketView) send(msgs ...viewMessage) {
	for _, m := range msgs {
		select {
		case v.out <- m:
		case <-v.done:
			return
		}
	}
}

func show(id string) viewMessage { return viewMessage{Type: "show", ID: id} }
func hide(id string) viewMessage { return viewMessage{Type: "hide", ID: id} }

func (v *socketView) SetStage(stage models.Stage, d models.StageDisplay) {
	v.send(viewMessage{
		Type:     "stage",
		ID:       stage.ElementID(),
		Text:     d.Label,
		Class:    d.Status.CSSClass(),
		Progress: d.Progress,
	})
}

func (v *socketView) SetSubmit(enabled bool, label string) {
	v.send(viewMessage{Type: "submit", ID: templates.IDAnalyzeBtn, Text: label, Enabled: enabled})
}

func (v *socketView) SetChartTitle(title string) {
	v.send(viewMessage{Type: "text", ID: templates.IDChartTitle, Text: title})
}

func (v *socketView) chartMessage(html string) {
	v.send(
		viewMessage{Type: "html", ID: templates.IDLoadingChart, HTML: html},
		show(templates.IDLoadingChart),
	)
}

func (v *socketView) ShowLoading(html string)     { v.chartMessage(html) }
func (v *socketView) ShowError(html string)       { v.chartMessage(html) }
func (v *socketView) ShowChartNotice(html string) { v.chartMessage(html) }

func (v *socketView) ShowRecommendation(html string) {
	v.send(viewMessage{Type: "html", ID: templates.IDRecommendationContent, HTML: html}, show(templates.IDRecommendationCard))
}

func (v *socketView) ShowAnalysis(html string) {
	v.send(viewMessage{Type: "html", ID: templates.IDAnalysisContent, HTML: html}, show(templates.IDAnalysisCard))
}

func (v *socketView) ShowInsights(html string) {
	v.send(viewMessage{Type: "html", ID: templates.IDInsightsContent, HTML: html}, show(templates.IDInsightsCard))
}

func (v *socketView) HideResults() {
	v.send(
		hide(templates.IDRecommendationCard),
		hide(templates.IDAnalysisCard),
		hide(templates.IDInsightsCard),
		hide(templates.IDStockChart),
		show(templates.IDLoadingChart),
	)
}

func (v *socketView) Plot(containerID string, fig *chart.Figure) {
	v.send(
		hide(templates.IDLoadingChart),
		show(containerID),
		viewMessage{Type: "plot", ID: containerID, Figure: fig},
	)
}

func (v *socketView) Notice(message string) {
	v.send(viewMessage{Type: "notice", Text: message})
}

var _ app.View = (*socketView)(nil)

// HandleConsoleSocket binds a live console to one websocket connection
func (h *Handler) HandleConsoleSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		observability.WithError(r.Context(), err).Warn("websocket upgrade failed")
		return
	}
	defer conn.Close()

	metrics := observability.GetMetrics()
	metrics.ConsoleOpened()
	defer metrics.ConsoleClosed()

	view := newSocketView()
	console := h.app.NewLiveConsole(view)
	log := observability.WithConsole(console.ID())
	client := clientKey(r)
	log.Info("console connected", "client", client)

	// Detached from the request so the server's request timeout does not end
	// long-lived consoles; canceled when the page goes away.
	ctx, cancel := context.WithCancel(context.Background())
	var submits sync.WaitGroup
	writerDone := make(chan struct{})
	defer func() {
		cancel()
		close(view.done)
		submits.Wait()
		<-writerDone
		log.Info("console disconnected")
	}()

	// writer
	go func() {
		defer close(writerDone)
		ping := time.NewTicker(socketPingPeriod)
		defer ping.Stop()
		for {
			select {
			case m := <-view.out:
				conn.SetWriteDeadline(time.Now().Add(socketWriteWait))
				if err := conn.WriteJSON(m); err != nil {
					conn.Close()
					return
				}
			case <-ping.C:
				conn.SetWriteDeadline(time.Now().Add(socketWriteWait))
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					conn.Close()
					return
				}
			case <-view.done:
				return
			}
		}
	}()

	// reader
	conn.SetReadDeadline(time.Now().Add(socketPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(socketPongWait))
	})
	for {
		mt, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if mt != websocket.TextMessage {
			continue
		}

		var msg clientMessage
		if err := json.Unmarshal(data, &msg); err != nil || msg.Type != "submit" {
			log.Debug("ignoring client message", "data", string(data))
			continue
		}

		if !h.limiter.Allow(client) {
			metrics.RecordRateLimited(r.URL.Path)
			view.Notice(rateLimitNotice)
			continue
		}

		submits.Add(1)
		go func(msg clientMessage) {
			defer submits.Done()
			err := console.Submit(ctx, msg.Symbol, msg.Period)
			switch {
			case err == nil,
				errors.Is(err, app.ErrEmptySymbol),
				errors.Is(err, app.ErrSubmissionInFlight),
				errors.Is(err, app.ErrAnalysisFailed):
			default:
				log.Error("console submission failed", "error", err)
			}
		}(msg)
	}
}
