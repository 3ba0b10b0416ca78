// Debug tool for EPUB container and OPF inspection.
//
// Usage:
//
//	go run ./cmd/test/epub_info/main.go <epub-file> (<content-filename> ...)
//
// This program will:
// - Open the EPUB file (ZIP archive, mimetype validated)
// - List all files in the archive
// - Parse the OPF package and display metadata
// - Show the spine reading order, detected cover, and table of contents
// - Print the contents of any extra file arguments
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/yuanying/ebook2pdf/internal/epub"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: go run ./cmd/test/epub_info/main.go <epub-file> (<content-filename> ...)")
		os.Exit(1)
	}

	epubPath := os.Args[1]
	filePaths := os.Args[2:]

	data, err := os.ReadFile(epubPath)
	if err != nil {
		log.Fatalf("Failed to read file: %v", err)
	}

	// EPUBファイルを開く
	fmt.Printf("Opening EPUB file: %s (%d bytes)\n", epubPath, len(data))
	reader, err := epub.NewReader(data)
	if err != nil {
		log.Fatalf("Failed to open EPUB: %v", err)
	}

	fmt.Printf("✓ EPUB opened successfully\n")
	fmt.Printf("OPF Path: %s\n\n", reader.OPFPath())

	// ファイル一覧を表示
	files := reader.Files()
	fmt.Printf("Total files: %d\n", len(files))
	fmt.Println("\nFile list:")
	for name := range files {
		fmt.Printf("  - %s\n", name)
	}

	// OPFパッケージを解析する
	opf, err := reader.Package()
	if err != nil {
		log.Fatalf("Failed to parse OPF: %v", err)
	}
	fmt.Println("\n✓ OPF parsed successfully")

	fmt.Println("\n--- Metadata ---")
	fmt.Printf("Title:      %s\n", opf.Metadata.Title)
	fmt.Printf("Language:   %s\n", opf.Metadata.Language)
	fmt.Printf("Identifier: %s\n", opf.Metadata.Identifier)
	if len(opf.Metadata.Creators) > 0 {
		fmt.Println("Creators:")
		for i, creator := range opf.Metadata.Creators {
			role := creator.Role
			if role == "" {
				role = "unknown"
			}
			fmt.Printf("  %d. %s (role: %s)\n", i+1, creator.Name, role)
		}
	}

	fmt.Printf("\n--- Spine ---\n")
	fmt.Println("Reading order:")
	for i, spineItem := range opf.Spine {
		linear := "yes"
		if !spineItem.Linear {
			linear = "no"
		}
		if item, ok := opf.Manifest[spineItem.IDRef]; ok {
			fmt.Printf("  %d. %s (linear: %s)\n", i+1, item.Href, linear)
		} else {
			fmt.Printf("  %d. [ID: %s - not found in manifest] (linear: %s)\n", i+1, spineItem.IDRef, linear)
		}
	}

	// カバー画像の検出
	if cover, ok := reader.Cover(opf); ok {
		fmt.Printf("\nCover image: %d bytes\n", len(cover))
	} else {
		fmt.Println("\nCover image: (not found)")
	}

	// 目次(NCX/NAV)の表示
	ncx, err := epub.LoadNCX(reader, opf)
	if err != nil {
		log.Fatalf("Failed to load TOC: %v", err)
	}
	if ncx != nil {
		fmt.Println("\n--- Table of Contents ---")
		if ncx.DocTitle != "" {
			fmt.Printf("Doc title: %s\n", ncx.DocTitle)
		}
		printNavPoints(ncx.NavPoints, 0)
	} else {
		fmt.Println("\nTable of contents: (not found)")
	}

	// 指定されたコンテンツファイルを読み込む
	for _, filePath := range filePaths {
		fmt.Printf("\nReading content file: %s\n", filePath)
		content, err := reader.ReadFile(filePath)
		if err != nil {
			log.Fatalf("Failed to read content file %s: %v", filePath, err)
		}
		fmt.Printf("✓ Content file %s read successfully (%d bytes)\n", filePath, len(content))
		fmt.Printf("Content:\n%s\n", string(content))
	}

	fmt.Println("\n✓ Done")
}

func printNavPoints(points []epub.NavPoint, depth int) {
	for _, np := range points {
		target := np.ContentPath
		if np.Fragment != "" {
			target += "#" + np.Fragment
		}
		fmt.Printf("  %*s%d. %s -> %s\n", depth*2, "", np.PlayOrder, np.Label, target)
		printNavPoints(np.Children, depth+1)
	}
}
