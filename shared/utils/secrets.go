package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// SecretsDir стандартный путь Docker Secrets. Переменная, чтобы тесты могли подменить каталог.
var SecretsDir = "/run/secrets"

// ReadSecret читает секрет из файла <SecretsDir>/<name>.
func ReadSecret(secretName string) (string, error) {
	filePath := filepath.Join(SecretsDir, secretName)
	secretBytes, err := os.ReadFile(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to read secret file %s: %w", filePath, err)
	}
	secret := strings.TrimSpace(string(secretBytes))
	if secret == "" {
		return "", fmt.Errorf("secret file %s is empty", filePath)
	}
	return secret, nil
}

// ReadSecretOrEnv сначала смотрит переменную окружения, потом файл секрета.
// Пустой результат без ошибки означает, что секрет не задан нигде.
func ReadSecretOrEnv(envName, secretName string) string {
	if v := strings.TrimSpace(os.Getenv(envName)); v != "" {
		return v
	}
	secret, err := ReadSecret(secretName)
	if err != nil {
		return ""
	}
	return secret
}

// Mask скрывает секрет для логов.
func Mask(secret string) string {
	if secret == "" {
		return "<not set>"
	}
	if len(secret) <= 4 {
		return "****"
	}
	return "****" + secret[len(secret)-4:]
}
