package sonar

import (
	"crypto/sha256"
	"crypto/subtle"
	"net/http"
	"net/url"

	"golang.org/x/net/websocket"
)

// Server serves a thing over HTTP.  Websockets connected on /ws/ are
// plugged into the server's bus; msgs arriving on them are routed by Path
// to the thing's subscribers.  Anything else goes to the thing itself if it
// is an http.Handler.
type Server struct {
	http.Server `json:"-"`
	*Bus        `json:"-"`
	thinger     Thinger
	subs        Subscribers
	injector    *Injector
	mux         *http.ServeMux
	user        string
	passwd      string
}

func NewServer(thinger Thinger) *Server {
	var s Server

	s.thinger = thinger
	s.subs = thinger.Subscribers()
	s.Bus = NewBus("server bus", route(thinger), s.connect, nil)
	s.injector = NewInjector("server injector", s.Bus)

	s.mux = http.NewServeMux()
	s.mux.HandleFunc("/ws/", s.serveWebSocket)
	if h, ok := thinger.(http.Handler); ok {
		s.mux.Handle("/", h)
	}
	s.Handler = s.basicAuth(s.mux.ServeHTTP)

	return &s
}

// connect sends the thing's state to a freshly connected client socket
func (s *Server) connect(sock Socketer) {
	if ws, ok := sock.(*webSocket); !ok || ws.dialed {
		return
	}
	if getState, ok := s.subs["get/state"]; ok {
		getState(&Msg{bus: s.Bus, src: sock})
	}
}

func (s *Server) Injector() *Injector {
	return s.injector
}

// BasicAuth protects every route with user and passwd.  An empty user turns
// auth off.
func (s *Server) BasicAuth(user, passwd string) {
	s.user, s.passwd = user, passwd
}

// HandleFunc adds a route behind basic auth
func (s *Server) HandleFunc(pattern string, handler http.HandlerFunc) {
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Handler.ServeHTTP(w, r)
}

// Dial keeps a websocket uplink to a hub at rawURL, announcing the thing on
// each connect
func (s *Server) Dial(user, passwd, rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return err
	}
	ws := newWebSocket(u, "", s.Bus)
	ws.dialed = true
	go ws.Dial(user, passwd, s.thinger.Announce())
	return nil
}

func (s *Server) serveWebSocket(w http.ResponseWriter, r *http.Request) {
	ws := newWebSocket(r.URL, r.RemoteAddr, s.Bus)
	serv := websocket.Server{Handler: websocket.Handler(ws.serve)}
	serv.ServeHTTP(w, r)
}

// Run runs the thing; it does not return
func (s *Server) Run() {
	s.thinger.Run(s.injector)
}

func (s *Server) basicAuth(next http.HandlerFunc) http.HandlerFunc {
	return http.HandlerFunc(func(writer http.ResponseWriter, r *http.Request) {

		// skip basic authentication if no user
		if s.user == "" {
			next.ServeHTTP(writer, r)
			return
		}

		ruser, rpasswd, ok := r.BasicAuth()

		if ok {
			userHash := sha256.Sum256([]byte(s.user))
			passHash := sha256.Sum256([]byte(s.passwd))
			ruserHash := sha256.Sum256([]byte(ruser))
			rpassHash := sha256.Sum256([]byte(rpasswd))

			userMatch := (subtle.ConstantTimeCompare(userHash[:], ruserHash[:]) == 1)
			passMatch := (subtle.ConstantTimeCompare(passHash[:], rpassHash[:]) == 1)

			if userMatch && passMatch {
				next.ServeHTTP(writer, r)
				return
			}
		}

		writer.Header().Set("WWW-Authenticate", `Basic realm="restricted", charset="UTF-8"`)
		http.Error(writer, "Unauthorized", http.StatusUnauthorized)
	})
}
