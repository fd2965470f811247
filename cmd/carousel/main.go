package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ivlev/carousel/internal/config"
	"github.com/ivlev/carousel/internal/element"
	"github.com/ivlev/carousel/internal/engine"
	"github.com/ivlev/carousel/internal/export"
	"github.com/ivlev/carousel/internal/library"
	"github.com/ivlev/carousel/internal/snapshot"
	"github.com/ivlev/carousel/internal/source"
	"github.com/ivlev/carousel/internal/store"
	"github.com/ivlev/carousel/internal/system"
	"golang.org/x/term"
)

var buildVersion = "dev"

func main() {
	// Увеличиваем лимиты системы (для macOS/Linux)
	system.InitResourceLimits()

	// Создаем нужные директории, если их нет
	dirs := []string{"input/panorama", "input/backgrounds", "output"}
	for _, d := range dirs {
		os.MkdirAll(d, 0755)
	}

	projectPtr := flag.String("project", "", "Путь к YAML-проекту карусели (latest - самый свежий в папке проектов)")
	panoramaPtr := flag.String("panorama", "", "Панорама для нарезки: изображение или PDF (file.pdf#N). auto - самая свежая в input/panorama/")
	backgroundsPtr := flag.String("backgrounds", "", "Папка с фонами для каждого слайда по порядку имён")
	slidesPtr := flag.Int("slides", 0, "Количество слайдов (3-20, 0 - из настроек или проекта)")
	aspectPtr := flag.String("aspect", "", "Формат слайда: 1:1, 4:5, 16:9, 9:16, 3:4, 4:3, 2:3, 3:2")
	headersPtr := flag.String("headers", "", "Заголовки слайдов через |")
	linkPtr := flag.String("cta-link", "", "Ссылка для призыва к действию на последнем слайде (QR-код при экспорте)")
	outPtr := flag.String("out", "", "Папка для экспорта слайдов (если пусто, генерируется в output/)")
	widthPtr := flag.Int("width", 0, "Ширина слайда при экспорте (0 - из настроек)")
	workersPtr := flag.Int("workers", 0, "Потоки экспорта (0 - подобрать по CPU и памяти)")
	formatPtr := flag.String("format", "", "Формат экспорта: png, jpeg")
	qualityPtr := flag.Int("quality", 0, "Качество JPEG 1-100 (0 - из настроек)")
	savePtr := flag.String("save", "", "Сохранить проект в YAML (auto - с отметкой времени в папке проектов)")
	dbPtr := flag.String("db", "", "Путь к библиотеке проектов SQLite")
	namePtr := flag.String("name", "", "Имя проекта в библиотеке: загрузить, если есть, и сохранить после работы")
	listPtr := flag.Bool("list", false, "Показать проекты в библиотеке и выйти")
	settingsPtr := flag.String("config", "carousel.yaml", "Файл настроек")
	contrastPtr := flag.Bool("auto-contrast", false, "Подобрать цвет текста и тень под фон каждого слайда")
	debugPtr := flag.Bool("debug", false, "Подробный лог")
	statsPtr := flag.Bool("stats", false, "Показать отчёт о производительности")

	flag.Parse()

	settings, err := config.Load(*settingsPtr)
	if err != nil {
		log.Fatalf("[-] Ошибка настроек: %v", err)
	}

	cfg := &config.Config{
		ProjectPath:  *projectPtr,
		PanoramaPath: *panoramaPtr,
		Slides:       *slidesPtr,
		AspectRatio:  *aspectPtr,
		OutputDir:    *outPtr,
		Width:        *widthPtr,
		Workers:      *workersPtr,
		Format:       *formatPtr,
		Quality:      *qualityPtr,
		SavePath:     *savePtr,
		LibraryPath:  *dbPtr,
		LibraryName:  *namePtr,
		SettingsPath: *settingsPtr,
		AutoContrast: *contrastPtr,
		Debug:        *debugPtr,
		ShowStats:    *statsPtr,
		BuildVersion: buildVersion,
	}
	engine.SetDebugLogging(cfg.Debug)

	if *listPtr {
		if err := listLibrary(cfg); err != nil {
			log.Fatalf("[-] Ошибка библиотеки: %v", err)
		}
		return
	}

	if err := run(cfg, settings, *backgroundsPtr, *headersPtr, *linkPtr); err != nil {
		log.Fatalf("[-] Ошибка проекта: %v", err)
	}
}

// progressPrinter redraws one status line on a terminal and prints a line per
// slide otherwise.
func progressPrinter() func(done, total int, path string) {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return func(done, total int, path string) {
			fmt.Printf("[>] Ready: %d/%d %s\n", done, total, path)
		}
	}
	return func(done, total int, path string) {
		fmt.Printf("\r[>] Ready: %d/%d", done, total)
		if done == total {
			fmt.Println()
		}
	}
}

func run(cfg *config.Config, settings config.Settings, backgrounds, headers, link string) error {
	startTime := time.Now()
	ctx := context.Background()

	if cfg.AspectRatio != "" {
		settings.AspectRatio = cfg.AspectRatio
	}
	if cfg.Slides != 0 {
		settings.SlideCount = cfg.Slides
	}
	if cfg.Width != 0 {
		settings.ExportWidth = cfg.Width
	}
	if cfg.Format != "" {
		settings.ExportFormat = cfg.Format
	}
	if cfg.Quality != 0 {
		settings.JPEGQuality = cfg.Quality
	}

	loader := source.NewFileLoader("", source.DefaultDPI)

	var lib *library.Library
	if cfg.LibraryPath != "" {
		var err error
		lib, err = library.Open(cfg.LibraryPath)
		if err != nil {
			return err
		}
		defer lib.Close()
	}

	comp, created, err := openProject(ctx, cfg, settings, lib, loader)
	if err != nil {
		return err
	}
	st := comp.Store()

	if cfg.Slides != 0 && cfg.Slides != st.Len() {
		if err := st.SetSlideCount(cfg.Slides); err != nil {
			return err
		}
	}
	if !created && cfg.AspectRatio != "" && cfg.AspectRatio != string(st.AspectRatio()) {
		if warn := st.SetAspectRatio(cfg.AspectRatio); warn != nil {
			fmt.Printf("[!] %v\n", warn)
		}
	}

	fmt.Println("--- [PROJECT: CAROUSEL] ---")
	fmt.Printf("[*] Слайдов: %d | Формат: %s | Ширина экспорта: %d\n", st.Len(), st.AspectRatio(), settings.ExportWidth)
	fmt.Println("-----------------------------")

	if err := applyPanorama(cfg, comp); err != nil {
		return err
	}
	if backgrounds != "" {
		src, err := source.NewImageSource(backgrounds)
		if err != nil {
			return fmt.Errorf("папка фонов: %w", err)
		}
		var refs []string
		for i := 0; i < src.PageCount(); i++ {
			refs = append(refs, src.Path(i))
		}
		n, err := comp.ApplySlideBackgrounds(refs)
		if err != nil {
			return err
		}
		fmt.Printf("[*] Назначено фонов: %d\n", n)
	}

	if created {
		if err := addDefaultText(st, headers, link); err != nil {
			return err
		}
	}

	outDir := cfg.OutputDir
	if outDir == "" {
		outDir = filepath.Join("output", fmt.Sprintf("carousel_%s", time.Now().Format("2006-01-02_15-04-05")))
	}
	format, err := export.ParseFormat(settings.ExportFormat)
	if err != nil {
		return err
	}
	size := comp.SlideSize(float64(settings.ExportWidth))
	workers := cfg.Workers
	if workers == 0 {
		workers = settings.Workers
	}
	if workers == 0 {
		workers = system.RecommendedWorkers(int64(size.W) * int64(size.H) * 4)
	}

	raster := export.NewRasterizer(loader, system.NewImagePool())
	if cfg.AutoContrast {
		n, err := comp.AutoContrast(raster)
		if err != nil {
			return fmt.Errorf("автоконтраст: %w", err)
		}
		fmt.Printf("[*] Автоконтраст: изменено элементов: %d\n", n)
	}

	exporter := export.NewExporter(raster, export.Options{
		Dir:     outDir,
		Format:  format,
		Quality: settings.JPEGQuality,
		Workers: workers,
		Progress: progressPrinter(),
	})

	exportStart := time.Now()
	results, err := comp.Export(ctx, exporter, size.W)
	if err != nil {
		return fmt.Errorf("ошибка экспорта: %w", err)
	}
	exportTime := time.Since(exportStart)

	if err := saveProject(ctx, cfg, settings, comp, lib); err != nil {
		return err
	}

	if cfg.ShowStats {
		totalTime := time.Since(startTime)
		fmt.Printf("--- [PERFORMANCE REPORT] ---\n"+
			"Build: %s\n"+
			"Total Time: %.2fs\n"+
			"Export: %.2fs (%d workers)\n"+
			"Slides/s: %.2f\n"+
			"%s\n"+
			"----------------------------\n",
			cfg.BuildVersion, totalTime.Seconds(), exportTime.Seconds(), workers,
			float64(len(results))/exportTime.Seconds(), system.MemoryReport())
	}

	fmt.Printf("[+++] Успех! Слайды: %s\n", outDir)
	return nil
}

func openProject(ctx context.Context, cfg *config.Config, settings config.Settings, lib *library.Library, prober engine.Prober) (*engine.Composer, bool, error) {
	opts := []engine.Option{engine.WithProber(prober)}

	if lib != nil && cfg.LibraryName != "" {
		p, err := lib.Load(ctx, cfg.LibraryName)
		if err == nil {
			fmt.Printf("[*] Проект из библиотеки: %s\n", cfg.LibraryName)
			comp, err := engine.OpenComposer(p, settings, opts...)
			return comp, false, err
		}
		if !errors.Is(err, library.ErrNotFound) {
			return nil, false, err
		}
	}

	path := cfg.ProjectPath
	if path == "latest" {
		latest, err := snapshot.FindLatestProject(settings.ProjectsDir)
		if err != nil {
			return nil, false, err
		}
		path = latest
	}
	if path != "" {
		p, err := snapshot.ReadProject(path)
		if err != nil {
			return nil, false, fmt.Errorf("load project %q: %w", path, err)
		}
		fmt.Printf("[*] Проект: %s\n", path)
		comp, err := engine.OpenComposer(p, settings, opts...)
		return comp, false, err
	}

	comp, err := engine.NewComposer(settings, opts...)
	if err != nil {
		return nil, false, err
	}
	for _, w := range comp.Warnings() {
		fmt.Printf("[!] %v\n", w)
	}
	return comp, true, nil
}

func applyPanorama(cfg *config.Config, comp *engine.Composer) error {
	ref := cfg.PanoramaPath
	if ref == "" {
		return nil
	}
	if ref == "auto" {
		latest, err := system.FindLatestImage("input/panorama")
		if err != nil {
			return fmt.Errorf("%v. Положите панораму в input/panorama/", err)
		}
		ref = latest
		fmt.Printf("[*] Выбран файл: %s\n", ref)
	}

	st := comp.Store()
	applied, err := comp.ApplyPanorama(engine.PanoramaResult{
		ImageRef:             ref,
		RequestedAspectRatio: string(st.AspectRatio()),
		SlideCount:           st.Len(),
	})
	if err != nil {
		return err
	}
	for _, w := range applied.Warnings {
		fmt.Printf("[!] %v\n", w)
	}
	fmt.Printf("[*] Панорама нарезана на %d слайдов (%s)\n", applied.Slides, applied.Ratio)
	return nil
}

func addDefaultText(st *store.Store, headers, link string) error {
	titles := strings.Split(headers, "|")
	slides := st.Slides()
	for i, s := range slides {
		if i < len(titles) && strings.TrimSpace(titles[i]) != "" {
			h, err := st.AddElement(s.ID, element.Header)
			if err != nil {
				return err
			}
			if _, err := st.UpdateElement(s.ID, h.ID, element.SetContent(strings.TrimSpace(titles[i]))); err != nil {
				return err
			}
		}
		if _, err := st.AddElement(s.ID, element.SlideNumber); err != nil {
			return err
		}
	}

	if link != "" {
		last := slides[len(slides)-1]
		cta, err := st.AddElement(last.ID, element.CallToAction)
		if err != nil {
			return err
		}
		if _, err := st.UpdateElement(last.ID, cta.ID, element.Patch{Link: &link}); err != nil {
			return err
		}
	}
	return nil
}

func saveProject(ctx context.Context, cfg *config.Config, settings config.Settings, comp *engine.Composer, lib *library.Library) error {
	if path := cfg.SavePath; path != "" {
		if path == "auto" {
			path = snapshot.GenerateProjectPath(settings.ProjectsDir)
		}
		os.MkdirAll(filepath.Dir(path), 0755)
		if err := comp.Save(path); err != nil {
			return fmt.Errorf("ошибка сохранения проекта: %w", err)
		}
		fmt.Printf("[*] Проект сохранён: %s\n", path)
	}

	if lib != nil && cfg.LibraryName != "" {
		if err := lib.Save(ctx, cfg.LibraryName, comp.Store().Project()); err != nil {
			return err
		}
		fmt.Printf("[*] Проект сохранён в библиотеку: %s\n", cfg.LibraryName)
	}
	return nil
}

func listLibrary(cfg *config.Config) error {
	if cfg.LibraryPath == "" {
		return fmt.Errorf("укажите -db")
	}
	lib, err := library.Open(cfg.LibraryPath)
	if err != nil {
		return err
	}
	defer lib.Close()

	entries, err := lib.List(context.Background())
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("[*] Библиотека пуста")
		return nil
	}
	for _, e := range entries {
		fmt.Printf("%-24s %-5s %2d слайдов  %s\n", e.Name, e.AspectRatio, e.SlideCount, e.UpdatedAt.Format("2006-01-02 15:04"))
	}
	return nil
}
