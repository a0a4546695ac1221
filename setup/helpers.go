package setup

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
)

// InstallHint returns the command that installs pkg with the first package
// manager found on PATH, or "" if none is known.
func InstallHint(pkg string) string {
	pm, args := detectPackageManager(pkg)
	if pm == "" {
		return ""
	}
	return "try: " + pm + " " + strings.Join(args, " ")
}

func detectPackageManager(pkgName string) (string, []string) {
	if _, err := lookPath("apt-get"); err == nil {
		return "sudo", []string{"apt-get", "install", "-y", pkgName}
	}
	if _, err := lookPath("dnf"); err == nil {
		return "sudo", []string{"dnf", "install", "-y", pkgName + "-ng"}
	}
	if _, err := lookPath("pacman"); err == nil {
		return "sudo", []string{"pacman", "-S", "--noconfirm", pkgName + "-ng"}
	}
	if _, err := lookPath("zypper"); err == nil {
		return "sudo", []string{"zypper", "install", "-y", pkgName}
	}
	return "", nil
}

// PermissionHint adds the usual fix to a device open error caused by missing
// permissions. Other errors are returned unchanged.
func PermissionHint(err error) error {
	if err == nil || !errors.Is(err, fs.ErrPermission) {
		return err
	}
	return fmt.Errorf("%w (add your user to the 'input' group and log in again, or run as root)", err)
}
