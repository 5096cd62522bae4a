package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ErrBadFilename возвращается для имен файлов, которые нельзя безопасно
// положить в каталог загрузок.
var ErrBadFilename = errors.New("invalid upload filename")

// Store определяет контракт хранилища медиафайлов: принять байты,
// вернуть публичный URL. Контракт нарочно минимальный, чтобы файловую
// систему можно было заменить объектным хранилищем, не трогая хендлеры.
type Store interface {
	Save(ctx context.Context, r io.Reader, filename string) (string, error)
}

// FSStore пишет загрузки в каталог на локальной файловой системе,
// который сервер раздает по baseURL.
type FSStore struct {
	dir     string
	baseURL string
}

// NewFSStore создает каталог загрузок, если его еще нет.
func NewFSStore(dir, baseURL string) (*FSStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create uploads dir: %w", err)
	}
	return &FSStore{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Save сохраняет файл под именем {timestamp}-{исходное имя}.
// Префикс-таймстемп разводит одноименные загрузки; коллизия возможна
// только при одинаковых именах в одну и ту же миллисекунду.
func (s *FSStore) Save(ctx context.Context, r io.Reader, filename string) (string, error) {
	// Запись локальная и короткая, поэтому отмену уважаем на входе,
	// не прерывая уже начатую запись на полпути.
	if err := ctx.Err(); err != nil {
		return "", err
	}

	base := filepath.Base(strings.TrimSpace(filename))
	if base == "" || base == "." || base == ".." || strings.ContainsAny(base, `/\`) {
		return "", ErrBadFilename
	}

	name := fmt.Sprintf("%d-%s", time.Now().UnixMilli(), base)
	path := filepath.Join(s.dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create upload file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		// Не оставляем за собой обрезанный файл.
		os.Remove(path)
		return "", fmt.Errorf("failed to write upload file: %w", err)
	}

	return s.baseURL + "/" + name, nil
}

// Dir возвращает каталог загрузок; нужен серверу для раздачи статики.
func (s *FSStore) Dir() string {
	return s.dir
}
