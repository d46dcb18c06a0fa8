package monitor

import (
	"os"

	"gopkg.in/yaml.v3"
)

// load monitor config from a file.
func LoadMonitorConfig(filepath string) (*MonitorConfig, error) {
	content, err := os.ReadFile(filepath)
	if err != nil {
		return nil, err
	}
	return Unmarshal(content)
}

func Unmarshal(conf []byte) (out *MonitorConfig, err error) {
	var _out *MonitorConfigMarshall
	if err := yaml.Unmarshal(conf, &_out); err != nil {
		return nil, err
	}
	out = TrySeal(_out)
	return out, nil
}
