package playbook

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/infinidb/emtools/pkg/config"
)

// SyncTemplate copies the template tree at src into the playbook directory.
// A file is copied when it is missing or its modification time differs from
// the template's; ansible.log is never copied.
func (m *Manager) SyncTemplate(src string) error {
	if err := os.MkdirAll(filepath.Join(m.rootDir, config.AnsibleLogDir), 0755); err != nil {
		return errors.Wrapf(err, "failed to create log directory in %s", m.rootDir)
	}

	if _, err := os.Stat(src); os.IsNotExist(err) {
		logger.Warningf("playbook template %s does not exist, skipping sync", src)
		return nil
	}

	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		dest := filepath.Join(m.rootDir, rel)

		if d.IsDir() {
			if info, err := os.Stat(dest); err == nil && !info.IsDir() {
				if err := os.RemoveAll(dest); err != nil {
					return errors.Wrapf(err, "failed to remove %s", dest)
				}
			}
			return os.MkdirAll(dest, 0755)
		}

		if d.Name() == config.AnsibleLogFile {
			return nil
		}
		srcInfo, err := d.Info()
		if err != nil {
			return err
		}
		destInfo, err := os.Stat(dest)
		if err == nil {
			if destInfo.IsDir() {
				if err := os.RemoveAll(dest); err != nil {
					return errors.Wrapf(err, "failed to remove %s", dest)
				}
			} else if destInfo.ModTime().Equal(srcInfo.ModTime()) {
				return nil
			}
		}
		return copyFile(path, dest, srcInfo)
	})
}

func copyFile(src, dest string, info fs.FileInfo) error {
	in, err := os.Open(src)
	if err != nil {
		return errors.Wrapf(err, "failed to open %s", src)
	}
	defer in.Close()

	out, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return errors.Wrapf(err, "failed to create %s", dest)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return errors.Wrapf(err, "failed to copy %s", src)
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Chtimes(dest, info.ModTime(), info.ModTime())
}
