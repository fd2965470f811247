package system

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

func InitResourceLimits() {
	var rLimit syscall.Rlimit
	err := syscall.Getrlimit(syscall.RLIMIT_NOFILE, &rLimit)
	if err != nil {
		log.Printf("[!] Не удалось получить лимит файлов: %v", err)
		return
	}

	rLimit.Cur = 2048
	if rLimit.Cur > rLimit.Max {
		rLimit.Cur = rLimit.Max
	}

	err = syscall.Setrlimit(syscall.RLIMIT_NOFILE, &rLimit)
	if err != nil {
		log.Printf("[!] Не удалось установить лимит файлов: %v", err)
	} else {
		fmt.Printf("[*] Системный лимит открытых файлов увеличен до %d\n", rLimit.Cur)
	}
}

// RecommendedWorkers подбирает число воркеров экспорта: не больше физических
// ядер и не больше, чем помещается холстов размера canvasBytes в половину
// свободной памяти.
func RecommendedWorkers(canvasBytes int64) int {
	n, err := cpu.Counts(false)
	if err != nil || n < 1 {
		n = runtime.NumCPU()
	}

	if vm, err := mem.VirtualMemory(); err == nil && canvasBytes > 0 {
		// каждый воркер держит холст и декодированный фон
		budget := int64(vm.Available / 2)
		byMem := int(budget / (canvasBytes * 3))
		if byMem < n {
			n = byMem
		}
	}

	if n < 1 {
		n = 1
	}
	return n
}

// MemoryReport описывает состояние памяти для отчёта -stats.
func MemoryReport() string {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return fmt.Sprintf("memory: unavailable (%v)", err)
	}
	return fmt.Sprintf("memory: %.1f%% used, %d MiB available", vm.UsedPercent, vm.Available>>20)
}

// FindLatestFile возвращает самый свежий файл в папке, для которого match возвращает true.
func FindLatestFile(dir string, match func(name string) bool) (string, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}

	var latestFile string
	var latestTime time.Time

	for _, f := range files {
		if f.IsDir() || !match(f.Name()) {
			continue
		}
		info, err := f.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(latestTime) {
			latestTime = info.ModTime()
			latestFile = filepath.Join(dir, f.Name())
		}
	}

	if latestFile == "" {
		return "", fmt.Errorf("в папке %s не найдено подходящих файлов", dir)
	}

	return latestFile, nil
}

// FindLatestImage ищет самое свежее изображение или PDF. Если path указывает
// на файл, поиск идёт в его папке.
func FindLatestImage(path string) (string, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return "", err
	}

	searchDir := path
	if !fi.IsDir() {
		searchDir = filepath.Dir(path)
	}

	extensions := []string{".jpg", ".jpeg", ".png", ".webp", ".bmp", ".pdf"}
	return FindLatestFile(searchDir, func(name string) bool {
		lower := strings.ToLower(name)
		for _, ext := range extensions {
			if strings.HasSuffix(lower, ext) {
				return true
			}
		}
		return false
	})
}
