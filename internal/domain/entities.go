package domain

import (
	"path/filepath"
	"strings"
)

// FileType identifies the format a Document was loaded from.
type FileType string

const (
	FileTypeText       FileType = "text"
	FileTypeMarkdown   FileType = "markdown"
	FileTypePDF        FileType = "pdf"
	FileTypePython     FileType = "python"
	FileTypeJavaScript FileType = "javascript"
	FileTypeJSON       FileType = "json"
	FileTypeCSV        FileType = "csv"
	FileTypeUnknown    FileType = "unknown"
)

var extensionTypes = map[string]FileType{
	".txt":  FileTypeText,
	".md":   FileTypeMarkdown,
	".pdf":  FileTypePDF,
	".py":   FileTypePython,
	".js":   FileTypeJavaScript,
	".json": FileTypeJSON,
	".csv":  FileTypeCSV,
}

// FileTypeFromPath maps a file extension (case-insensitive) to its FileType.
func FileTypeFromPath(path string) FileType {
	if ft, ok := extensionTypes[strings.ToLower(filepath.Ext(path))]; ok {
		return ft
	}
	return FileTypeUnknown
}

// Document is the text of one loaded segment: a whole file, or one page of a PDF.
type Document struct {
	Content    string
	SourcePath string
	Filename   string
	FileType   FileType
	Page       int // 1-based for paged formats, 0 otherwise
}

// Chunk is a bounded window of a Document's text. Start is the rune offset of
// the chunk's first rune within the Document content.
type Chunk struct {
	ID         string
	Content    string
	SourcePath string
	Filename   string
	FileType   FileType
	Page       int
	Index      int
	Start      int
}

type ScoredChunk struct {
	Chunk Chunk
	Score float64
}

// Stats summarizes a built corpus.
type Stats struct {
	FilesSeen    int
	FilesLoaded  int
	FilesSkipped int
	Documents    int
	Chunks       int
	Dimension    int
	AvgChunkLen  float64
}

// User is an entry of the team directory.
type User struct {
	Username  string `yaml:"username"`
	Name      string `yaml:"name"`
	Role      string `yaml:"role"`
	Team      string `yaml:"team"`
	Manager   string `yaml:"manager"`
	Dashboard string `yaml:"dashboard"`
}

// FirstName returns the first word of the user's display name.
func (u User) FirstName() string {
	if fields := strings.Fields(u.Name); len(fields) > 0 {
		return fields[0]
	}
	return u.Username
}

// Tone is the accent a dashboard card is rendered with.
type Tone string

const (
	TonePrimary Tone = "primary"
	ToneSuccess Tone = "success"
	ToneAlt     Tone = "alt"
	ToneDanger  Tone = "danger"
)

type Card struct {
	Title string `yaml:"title"`
	Body  string `yaml:"body"`
	Badge string `yaml:"badge,omitempty"`
	Tone  Tone   `yaml:"tone,omitempty"`
}

type Section struct {
	Title string `yaml:"title"`
	Cards []Card `yaml:"cards"`
}

// Dashboard is the role-specific overview shown to a signed-in user.
type Dashboard struct {
	Title    string
	Kind     string
	Sections []Section
}
