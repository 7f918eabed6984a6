package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/AntonStoeckl/reviewfeed/moviereviews/features/feed"
)

const (
	writeWait         = 10 * time.Second
	defaultPingPeriod = (60 * time.Second * 9) / 10
	maxClientMessage  = 512

	logMsgUpgradeFailed = "httpapi: websocket upgrade failed"
	logMsgWriteFailed   = "httpapi: websocket write failed"
	logMsgUnexpectClose = "httpapi: unexpected websocket close"
	logAttrMovieID      = "movie_id"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// Identity comes from the bearer token, not from cookies.
	CheckOrigin: func(*http.Request) bool { return true },
}

// liveReviews streams the movie's feed over a websocket: the current snapshot first, then every update.
// The feed is opened before the upgrade so that its errors are still plain HTTP responses.
func (s *Server) liveReviews(w http.ResponseWriter, r *http.Request) {
	viewer, err := s.viewerFrom(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	movieID, err := movieIDFrom(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	f, err := s.feed.ReviewsForMovie(ctx, movieID, viewer)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	defer f.Close()

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// the upgrader already answered with an HTTP error
		if s.logger != nil {
			s.logger.DebugContext(ctx, logMsgUpgradeFailed, logAttrMovieID, movieID.String(), logAttrError, err.Error())
		}

		return
	}
	defer func() { _ = conn.Close() }()

	s.metrics.liveFeeds.Inc()
	defer s.metrics.liveFeeds.Dec()

	go s.readPump(ctx, conn, cancel)
	s.writePump(ctx, conn, f)
}

// readPump discards client messages and keeps the read deadline alive with pongs. It cancels the
// connection context once the client goes away.
func (s *Server) readPump(ctx context.Context, conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()

	pongWait := s.pingPeriod * 10 / 9

	conn.SetReadLimit(maxClientMessage)
	if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		return
	}

	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) && s.logger != nil {
				s.logger.DebugContext(ctx, logMsgUnexpectClose, logAttrError, err.Error())
			}

			return
		}
	}
}

func (s *Server) writePump(ctx context.Context, conn *websocket.Conn, f *feed.Feed) {
	ticker := time.NewTicker(s.pingPeriod)
	defer ticker.Stop()

	if err := s.writeSnapshot(ctx, conn, f.Current()); err != nil {
		return
	}

	for {
		select {
		case snapshot, ok := <-f.Updates():
			if !ok {
				s.writeClose(conn)
				return
			}

			if err := s.writeSnapshot(ctx, conn, snapshot); err != nil {
				return
			}

		case <-ticker.C:
			if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}

			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-ctx.Done():
			s.writeClose(conn)
			return
		}
	}
}

func (s *Server) writeSnapshot(ctx context.Context, conn *websocket.Conn, snapshot feed.Snapshot) error {
	payload, err := bodyJSON.Marshal(snapshotResponseFrom(snapshot))
	if err != nil {
		return err
	}

	if err = conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}

	if err = conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		if s.logger != nil {
			s.logger.DebugContext(ctx, logMsgWriteFailed, logAttrMovieID, snapshot.MovieID.String(), logAttrError, err.Error())
		}

		return err
	}

	return nil
}

func (s *Server) writeClose(conn *websocket.Conn) {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}
