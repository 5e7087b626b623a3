package path

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// RootEnv 部署時指定設定檔所在的根目錄
const RootEnv = "KEYHUB_ROOT"

// RootPath 相對路徑的設定檔以此為基準：KEYHUB_ROOT 優先，否則為工作目錄
func RootPath() string {
	if root := os.Getenv(RootEnv); root != "" {
		if abs, err := filepath.Abs(root); err == nil {
			return abs
		}
		return filepath.Clean(root)
	}
	wd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return wd
}

// Resolve 相對路徑接到 base 之下
func Resolve(base, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}

// Exists 路徑是否存在
func Exists(p string) (bool, error) {
	_, err := os.Stat(p)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, err
	}
}
