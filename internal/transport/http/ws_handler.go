package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"lesson-quiz-service/internal/app"
	"lesson-quiz-service/internal/domain"
)

type WSHandler struct {
	service  *app.QuizService
	limit    int
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.QuizService, rankingLimit int) *WSHandler {
	return &WSHandler{
		service: service,
		limit:   rankingLimit,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type selectPayload struct {
	Option int `json:"option"`
}

type answerResult struct {
	QuestionID string `json:"questionId"`
	Correct    bool   `json:"correct"`
}

type submittedPayload struct {
	Entry     domain.RankingEntry `json:"entry"`
	Placement int                 `json:"placement"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades HTTP requests to websockets and drives one quiz session
// over the connection. A user with a recorded attempt is sent the ranking
// view immediately and stays on as a spectator of ranking updates.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	quizID := r.URL.Query().Get("quizId")
	userID := r.URL.Query().Get("userId")
	displayName := r.URL.Query().Get("name")
	if quizID == "" || userID == "" || displayName == "" {
		http.Error(w, "missing quizId, userId, or name", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		}
	}()

	updates, cancel := h.service.Subscribe(quizID)
	defer cancel()

	go func() {
		defer close(updatesDone)
		for {
			select {
			case update, ok := <-updates:
				if !ok {
					return
				}
				select {
				case send <- outboundMessage[any]{Type: "ranking", Payload: h.truncate(update)}:
				case <-closeSignals:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	session, err := h.service.StartSession(r.Context(), userID, quizID)
	switch {
	case errors.Is(err, domain.ErrAlreadyAttempted):
		// One attempt per user: skip the question flow, show the ranking.
		h.sendRanking(r, send, quizID, userID)
	case errors.Is(err, domain.ErrQuizUnavailable), errors.Is(err, domain.ErrQuizNotFound):
		send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "quiz not ready"}}
	case err != nil:
		send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "quiz unavailable, try again"}}
	default:
		send <- outboundMessage[any]{Type: "question", Payload: session.Snapshot()}
	}

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		if session == nil {
			send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "no active session"}}
			continue
		}

		switch inbound.Type {
		case "select":
			var payload selectPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "invalid select payload"}}
				continue
			}
			if err := session.SelectOption(payload.Option); err != nil {
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: userMessage(err)}}
				continue
			}
			send <- outboundMessage[any]{Type: "question", Payload: session.Snapshot()}

		case "check":
			questionID := session.CurrentQuestion().ID
			correct, err := session.CheckAnswer()
			if err != nil {
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: userMessage(err)}}
				continue
			}
			send <- outboundMessage[any]{Type: "answerResult", Payload: answerResult{QuestionID: questionID, Correct: correct}}

		case "advance":
			if err := session.Advance(); err != nil {
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: userMessage(err)}}
				continue
			}
			if session.Completed() {
				send <- outboundMessage[any]{Type: "completed", Payload: session.Snapshot()}
				continue
			}
			send <- outboundMessage[any]{Type: "question", Payload: session.Snapshot()}

		case "retreat":
			session.Retreat()
			send <- outboundMessage[any]{Type: "question", Payload: session.Snapshot()}

		case "submit":
			entry, placement, err := h.service.SubmitResult(r.Context(), session, displayName)
			if err != nil {
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: userMessage(err)}}
				if errors.Is(err, domain.ErrAlreadyAttempted) {
					h.sendRanking(r, send, quizID, userID)
				}
				continue
			}
			send <- outboundMessage[any]{Type: "submitted", Payload: submittedPayload{Entry: entry, Placement: placement}}

		default:
			send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "unsupported message type"}}
		}
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}

func (h *WSHandler) sendRanking(r *http.Request, send chan<- outboundMessage[any], quizID, userID string) {
	ranking, err := h.service.Ranking(r.Context(), quizID, h.limit)
	if err != nil {
		send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "ranking unavailable, try again"}}
		return
	}
	send <- outboundMessage[any]{Type: "ranking", Payload: ranking}

	if placement, err := h.service.Placement(r.Context(), userID, quizID); err == nil {
		send <- outboundMessage[any]{Type: "placement", Payload: placement}
	}
}

func (h *WSHandler) truncate(ranking domain.Ranking) domain.Ranking {
	if h.limit > 0 && len(ranking.Entries) > h.limit {
		ranking.Entries = ranking.Entries[:h.limit]
	}
	return ranking
}

// userMessage maps domain sentinels onto the strings the shell shows.
func userMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrNoSelection):
		return "select an answer first"
	case errors.Is(err, domain.ErrAnswerFinalized):
		return "answer already checked"
	case errors.Is(err, domain.ErrAnswerNotFinalized):
		return "check your answer before moving on"
	case errors.Is(err, domain.ErrSessionCompleted):
		return "quiz already finished"
	case errors.Is(err, domain.ErrSessionIncomplete):
		return "finish the quiz before submitting"
	case errors.Is(err, domain.ErrAlreadyAttempted):
		return "you already took this quiz"
	case errors.Is(err, domain.ErrInvalidOption):
		return "that option does not exist"
	}
	return err.Error()
}
