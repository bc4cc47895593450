package gamesense

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/goccy/go-json"
)

// ErrEngineNotFound 表示找不到 SteelSeries Engine 的 coreProps.json
var ErrEngineNotFound = errors.New("未找到 SteelSeries Engine")

type coreProps struct {
	Address          string `json:"address"`
	EncryptedAddress string `json:"encryptedAddress"`
}

// CorePropsPath 返回当前系统上 coreProps.json 的路径
func CorePropsPath() (string, error) {
	switch runtime.GOOS {
	case "windows":
		programData := os.Getenv("PROGRAMDATA")
		if programData == "" {
			programData = `C:\ProgramData`
		}
		return filepath.Join(programData, "SteelSeries", "SteelSeries Engine 3", "coreProps.json"), nil
	case "darwin":
		return "/Library/Application Support/SteelSeries Engine 3/coreProps.json", nil
	}
	return "", fmt.Errorf("%w：不支持的系统 %s", ErrEngineNotFound, runtime.GOOS)
}

// ReadCoreProps 从 coreProps.json 读取 Engine 地址
func ReadCoreProps(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w：%s", ErrEngineNotFound, path)
		}
		return "", fmt.Errorf("读取 %s 失败：%w", path, err)
	}

	var props coreProps
	if err := json.Unmarshal(data, &props); err != nil {
		return "", fmt.Errorf("解析 %s 失败：%w", path, err)
	}
	if props.Address == "" {
		return "", fmt.Errorf("%s 中没有 address 字段", path)
	}

	return props.Address, nil
}

// DiscoverAddress 自动发现本机 Engine 的地址
func DiscoverAddress() (string, error) {
	path, err := CorePropsPath()
	if err != nil {
		return "", err
	}
	return ReadCoreProps(path)
}
