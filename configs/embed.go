// Package configs 内置配置与示例初始状态
package configs

import _ "embed"

//go:embed development/node.yaml
var developmentConfig []byte

//go:embed genesis/example.yaml
var exampleGenesis []byte

// GetDevelopmentConfig 开发环境节点配置（YAML）
func GetDevelopmentConfig() []byte {
	return developmentConfig
}

// GetExampleGenesis 示例初始状态（YAML）
func GetExampleGenesis() []byte {
	return exampleGenesis
}
