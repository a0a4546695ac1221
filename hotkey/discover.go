package hotkey

import (
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// Default roots for discovery.
const (
	SysRoot = "/sys"
	DevRoot = "/dev"
)

// FindKeyboards returns keyboard event devices, lowest event number first.
// A device counts as a keyboard if its name says so or if it reports both
// key and autorepeat events, which pointers and power buttons do not.
func FindKeyboards(sysRoot, devRoot string) ([]Keyboard, error) {
	matches, err := filepath.Glob(filepath.Join(sysRoot, "class/input/event*"))
	if err != nil {
		return nil, err
	}

	var keyboards []Keyboard
	for _, dir := range matches {
		node := filepath.Base(dir)
		name := DeviceName(sysRoot, node)
		lower := strings.ToLower(name)
		if !strings.Contains(lower, "keyboard") && !strings.Contains(lower, "kbd") && !hasKeyRepeat(dir) {
			continue
		}
		keyboards = append(keyboards, Keyboard{
			Path: filepath.Join(devRoot, "input", node),
			Node: node,
			Name: name,
		})
	}

	sort.Slice(keyboards, func(i, j int) bool {
		return eventNumber(keyboards[i].Node) < eventNumber(keyboards[j].Node)
	})
	return keyboards, nil
}

// FindKeyboard returns the path of the first keyboard device.
func FindKeyboard(sysRoot, devRoot string) (string, error) {
	keyboards, err := FindKeyboards(sysRoot, devRoot)
	if err != nil {
		return "", err
	}
	if len(keyboards) == 0 {
		return "", ErrNoKeyboard
	}
	logger.Printf("found %d keyboard(s), using %s (%s)", len(keyboards), keyboards[0].Path, keyboards[0].Name)
	return keyboards[0].Path, nil
}

// DeviceName reads the kernel name of an event node, or "" if unknown.
func DeviceName(sysRoot, node string) string {
	data, err := os.ReadFile(filepath.Join(sysRoot, "class/input", node, "device/name"))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// ResolveDevicePath accepts either a device node or its sysfs directory
// (/sys/class/input/eventN) and returns the device node.
func ResolveDevicePath(path, sysRoot, devRoot string) string {
	clean := filepath.Clean(path)
	if filepath.Dir(clean) == filepath.Join(sysRoot, "class/input") && strings.HasPrefix(filepath.Base(clean), "event") {
		return filepath.Join(devRoot, "input", filepath.Base(clean))
	}
	return path
}

// hasKeyRepeat parses capabilities/ev, a hex bitmask printed as
// space-separated words with the lowest bits last.
func hasKeyRepeat(dir string) bool {
	data, err := os.ReadFile(filepath.Join(dir, "device/capabilities/ev"))
	if err != nil {
		return false
	}
	words := strings.Fields(string(data))
	if len(words) == 0 {
		return false
	}
	bits, err := strconv.ParseUint(words[len(words)-1], 16, 64)
	if err != nil {
		return false
	}
	return bits&(1<<evKey) != 0 && bits&(1<<evRep) != 0
}

func eventNumber(node string) int {
	n, err := strconv.Atoi(strings.TrimPrefix(node, "event"))
	if err != nil {
		return int(^uint(0) >> 1)
	}
	return n
}
