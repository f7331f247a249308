// Package preview serves the harvested archive as a small local web UI:
// a folder index with thumbnails, a per-user feed page and a full-text
// search across post titles and descriptions. Snapshot files are read per
// request, so the pages always reflect the latest harvest without a
// restart.
package preview

import (
	"html/template"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/qingyue0906/bili-dynamics/pkg/bilibili"
	"github.com/qingyue0906/bili-dynamics/pkg/feed"
	"github.com/qingyue0906/bili-dynamics/pkg/logger"
)

// Server renders the archive rooted at a base directory
type Server struct {
	root   string
	logger logger.Logger
}

// NewServer creates a preview server over an archive directory
func NewServer(root string, log logger.Logger) *Server {
	if log == nil {
		log = logger.GetLogger()
	}

	return &Server{
		root:   root,
		logger: log,
	}
}

// Router builds the HTTP routes
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleIndex)
	r.Get("/search", s.handleSearch)
	r.Get("/feed/{folder}", s.handleFeed)
	r.Get("/{folder}/{file}", s.handleAsset)

	return r
}

// ListenAndServe blocks serving the preview UI on addr
func (s *Server) ListenAndServe(addr string) error {
	s.logger.InfoWithFields("preview server listening", map[string]interface{}{
		"addr": addr,
		"root": s.root,
	})

	return http.ListenAndServe(addr, s.Router())
}

type folderView struct {
	Name    string
	Preview string
}

type postView struct {
	Folder      string
	Title       string
	Description string
	Time        string
	Images      []string
}

// listFolders returns the names of subdirectories that hold a snapshot
func (s *Server) listFolders() ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, err
	}

	var folders []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		snapshot := filepath.Join(s.root, entry.Name(), feed.SnapshotName)
		if _, err := os.Stat(snapshot); err == nil {
			folders = append(folders, entry.Name())
		}
	}

	return folders, nil
}

// loadPosts reads a folder's snapshot, newest first
func (s *Server) loadPosts(folder string) []feed.Post {
	store := feed.NewStore(filepath.Join(s.root, folder, feed.SnapshotName), s.logger)
	return store.Load()
}

// imageSrc resolves an asset reference to a local URL when the file was
// downloaded, falling back to the cleaned remote URL otherwise
func (s *Server) imageSrc(folder, rawURL string) string {
	cleanURL := bilibili.CleanAssetURL(rawURL)
	filename, err := bilibili.AssetFileName(cleanURL)
	if err != nil {
		return cleanURL
	}

	if _, err := os.Stat(filepath.Join(s.root, folder, filename)); err == nil {
		return "/" + folder + "/" + filename
	}
	return cleanURL
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	folders, err := s.listFolders()
	if err != nil {
		s.logger.WithError(err).Error("failed to list archive folders")
		http.Error(w, "failed to read archive", http.StatusInternalServerError)
		return
	}

	views := make([]folderView, 0, len(folders))
	for _, name := range folders {
		view := folderView{Name: name}
		// Thumbnail comes from the newest post that has pictures
		if posts := s.loadPosts(name); len(posts) > 0 && len(posts[0].Content.Pictures) > 0 {
			view.Preview = s.imageSrc(name, posts[0].Content.Pictures[0])
		}
		views = append(views, view)
	}

	s.render(w, indexTemplate, map[string]interface{}{"Folders": views})
}

func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	folder := chi.URLParam(r, "folder")
	if !s.folderExists(folder) {
		http.NotFound(w, r)
		return
	}

	posts := s.loadPosts(folder)
	views := make([]postView, 0, len(posts))
	for _, post := range posts {
		views = append(views, s.postView(folder, post))
	}

	s.render(w, feedTemplate, map[string]interface{}{
		"Folder": folder,
		"Posts":  views,
	})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("q")))

	var results []postView
	if query != "" {
		folders, err := s.listFolders()
		if err != nil {
			s.logger.WithError(err).Error("failed to list archive folders")
			http.Error(w, "failed to read archive", http.StatusInternalServerError)
			return
		}

		for _, folder := range folders {
			for _, post := range s.loadPosts(folder) {
				combined := strings.ToLower(post.Content.Title + " " + post.Content.Description)
				if strings.Contains(combined, query) {
					results = append(results, s.postView(folder, post))
				}
			}
		}
	}

	s.render(w, searchTemplate, map[string]interface{}{
		"Query":   query,
		"Results": results,
	})
}

// handleAsset serves a downloaded file from a user folder. Both path
// segments must be plain names so the handler cannot escape the archive.
func (s *Server) handleAsset(w http.ResponseWriter, r *http.Request) {
	folder := chi.URLParam(r, "folder")
	file := chi.URLParam(r, "file")

	if !validPathSegment(folder) || !validPathSegment(file) {
		http.NotFound(w, r)
		return
	}

	http.ServeFile(w, r, filepath.Join(s.root, folder, file))
}

func (s *Server) postView(folder string, post feed.Post) postView {
	images := make([]string, 0, len(post.Content.Pictures))
	for _, pic := range post.Content.Pictures {
		images = append(images, s.imageSrc(folder, pic))
	}

	return postView{
		Folder:      folder,
		Title:       post.Content.Title,
		Description: post.Content.Description,
		Time:        post.PublishedAt,
		Images:      images,
	}
}

func (s *Server) folderExists(folder string) bool {
	if !validPathSegment(folder) {
		return false
	}
	_, err := os.Stat(filepath.Join(s.root, folder, feed.SnapshotName))
	return err == nil
}

func validPathSegment(seg string) bool {
	if seg == "" || seg == "." || seg == ".." {
		return false
	}
	return !strings.ContainsAny(seg, "/\\")
}

func (s *Server) render(w http.ResponseWriter, tmpl *template.Template, data interface{}) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.Execute(w, data); err != nil {
		s.logger.WithError(err).Error("failed to render template")
	}
}
