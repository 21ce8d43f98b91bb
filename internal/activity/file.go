package activity

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
)

// TypeCreateFile — тип активности создания файла.
const TypeCreateFile = "createFile"

// Ключи конфигурации createFile.
const (
	configFileName  = "fileName"
	configDirectory = "directory"
	configContent   = "content"
)

// FileInfo — описание файла, возвращаемое файловыми активностями.
type FileInfo struct {
	Name      string `json:"name"`
	FullName  string `json:"fullName"`
	Directory string `json:"directory"`
	Extension string `json:"extension"`
	Length    int    `json:"length"`
}

// CreateFileActivity — описание создаваемого файла.
//
// Файловую систему не трогает: запись выполняет удалённая активность writeFile.
//
// Конфигурация:
//
//	{
//	    "fileName": "report.txt",
//	    "directory": "/data/out",
//	    "content": "hello"
//	}
//
// Output: FileInfo
//
//	{"name": "report", "fullName": "report.txt", "directory": "/data/out", "extension": ".txt", "length": 5}
type CreateFileActivity struct{}

// NewCreateFileActivity создаёт новый CreateFileActivity.
func NewCreateFileActivity() *CreateFileActivity {
	return &CreateFileActivity{}
}

func (a *CreateFileActivity) Type() string  { return TypeCreateFile }
func (a *CreateFileActivity) Label() string { return "Create File" }

// Fields возвращает схему конфигурации.
func (a *CreateFileActivity) Fields() []Field {
	return []Field{
		{Name: configFileName, Kind: FieldKindString, Description: "File name with extension"},
		{Name: configDirectory, Kind: FieldKindString, Description: "Target directory"},
		{Name: configContent, Kind: FieldKindText, Description: "Initial file content"},
	}
}

// Compute строит FileInfo по конфигурации.
func (a *CreateFileActivity) Compute(ctx context.Context, req *Request) (any, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %v", ErrCancelled, ctx.Err())
	default:
	}

	fullName := ConfigString(req.Config, configFileName)
	if fullName == "" {
		return nil, fmt.Errorf("%w: %s: fileName is required", ErrInvalidConfig, TypeCreateFile)
	}
	if strings.ContainsAny(fullName, `/\`) {
		return nil, fmt.Errorf("%w: %s: fileName must not contain path separators",
			ErrInvalidConfig, TypeCreateFile)
	}

	ext := filepath.Ext(fullName)
	return FileInfo{
		Name:      strings.TrimSuffix(fullName, ext),
		FullName:  fullName,
		Directory: ConfigString(req.Config, configDirectory),
		Extension: ext,
		Length:    len(ConfigString(req.Config, configContent)),
	}, nil
}
