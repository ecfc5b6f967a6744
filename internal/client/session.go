package client

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

const (
	KeyToken  = "neontask_token"
	KeyHandle = "neontask_handle"
)

// Session 本地持久化的登录态，文件格式由扩展名决定（默认 yaml）
type Session struct {
	path string
	v    *viper.Viper
}

// DefaultSessionPath ~/.config/neontask/session.yaml
func DefaultSessionPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "neontask", "session.yaml"), nil
}

// OpenSession 文件不存在视为未登录
func OpenSession(path string) (*Session, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if filepath.Ext(path) == "" {
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read session: %w", err)
		}
	}
	return &Session{path: path, v: v}, nil
}

func (s *Session) Token() string  { return s.v.GetString(KeyToken) }
func (s *Session) Handle() string { return s.v.GetString(KeyHandle) }

func (s *Session) Save(token, handle string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("session dir: %w", err)
	}
	s.v.Set(KeyToken, token)
	s.v.Set(KeyHandle, handle)
	if err := s.v.WriteConfigAs(s.path); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return os.Chmod(s.path, 0o600)
}

// Clear 登出：删除会话文件
func (s *Session) Clear() error {
	s.v.Set(KeyToken, "")
	s.v.Set(KeyHandle, "")
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove session: %w", err)
	}
	return nil
}
