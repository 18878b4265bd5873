package machine

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// A Theme holds the debugger's pane colors as "#rrggbb" strings. Themes load
// from a small yaml file; omitted keys keep their defaults.
type Theme struct {
	Text    string `yaml:"text"`
	Dim     string `yaml:"dim"`
	Border  string `yaml:"border"`
	Address string `yaml:"address"`
	Value   string `yaml:"value"`
	Accent  string `yaml:"accent"`
	Error   string `yaml:"error"`
}

func DefaultTheme() Theme {
	return Theme{
		Text:    "#cdd6f4",
		Dim:     "#a6adc8",
		Border:  "#6c7086",
		Address: "#a7dfa2",
		Value:   "#fab387",
		Accent:  "#b4befe",
		Error:   "#f38ba8",
	}
}

func checkHex(color string) error {
	if len(color) != 7 || color[0] != '#' {
		return fmt.Errorf("couldn't parse %q: want #rrggbb", color)
	}
	for _, c := range color[1:] {
		switch {
		case c >= '0' && c <= '9', c >= 'a' && c <= 'f', c >= 'A' && c <= 'F':
		default:
			return fmt.Errorf("couldn't parse %q: invalid hex digit %q", color, c)
		}
	}
	return nil
}

func (t Theme) validate() error {
	for _, color := range []string{t.Text, t.Dim, t.Border, t.Address, t.Value, t.Accent, t.Error} {
		if err := checkHex(color); err != nil {
			return err
		}
	}
	return nil
}

// LoadTheme reads a yaml theme file, filling unset keys from the default.
func LoadTheme(path string) (Theme, error) {
	theme := DefaultTheme()
	data, err := os.ReadFile(path)
	if err != nil {
		return Theme{}, err
	}
	if err := yaml.Unmarshal(data, &theme); err != nil {
		return Theme{}, fmt.Errorf("theme %s: %w", path, err)
	}
	if err := theme.validate(); err != nil {
		return Theme{}, fmt.Errorf("theme %s: %w", path, err)
	}
	return theme, nil
}
