// Debug tool for MOBI/AZW3 container inspection.
//
// Usage:
//
//	go run ./cmd/test/mobitext/main.go <mobi-file> [text-bytes]
//
// This program prints:
// - PDB container stats (name, record count, timestamps)
// - PalmDOC/MOBI header fields (compression, text length, encoding)
// - EXTH metadata (title, author, language, cover)
// - The first bytes of the extracted plain text
package main

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/yuanying/ebook2pdf/internal/extract"
	"github.com/yuanying/ebook2pdf/internal/mobi"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: go run ./cmd/test/mobitext/main.go <mobi-file> [text-bytes]")
		os.Exit(1)
	}

	path := os.Args[1]
	limit := 500
	if len(os.Args) > 2 {
		n, err := strconv.Atoi(os.Args[2])
		if err != nil {
			log.Fatalf("Invalid byte count %q: %v", os.Args[2], err)
		}
		limit = n
	}

	data, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("Failed to read file: %v", err)
	}

	fmt.Printf("Opening MOBI file: %s (%d bytes)\n", path, len(data))
	r, err := mobi.NewReader(data)
	if err != nil {
		log.Fatalf("Failed to parse container: %v", err)
	}
	fmt.Printf("✓ Container parsed successfully\n\n")

	// PDBコンテナの情報
	fmt.Printf("PDB name:     %s\n", r.PDB.Name)
	fmt.Printf("Type/Creator: %s/%s\n", r.PDB.Type, r.PDB.Creator)
	fmt.Printf("Records:      %d\n", r.PDB.NumRecords())
	fmt.Printf("Created:      %s\n\n", r.PDB.Created)

	// レコード0のヘッダ情報
	fmt.Printf("Compression:  %d\n", r.PalmDOC.Compression)
	fmt.Printf("Text length:  %d bytes in %d records\n", r.PalmDOC.TextLength, r.PalmDOC.TextRecordCount)
	if r.Header != nil {
		fmt.Printf("Encoding:     %d\n", r.Header.TextEncoding)
		fmt.Printf("First image:  record %d\n", r.Header.FirstImageIndex)
	}
	if r.EXTH != nil {
		fmt.Printf("EXTH records: %d\n", len(r.EXTH.Records))
	}
	fmt.Println()

	// メタデータ
	fmt.Printf("Title:    %s\n", r.Title())
	fmt.Printf("Author:   %s\n", r.Author())
	fmt.Printf("Language: %s\n", r.Language())
	if cover, ok := r.Cover(); ok {
		fmt.Printf("Cover:    %d bytes\n", len(cover))
	} else {
		fmt.Printf("Cover:    none\n")
	}
	fmt.Println()

	// 抽出したテキストの先頭を表示
	format, ok := extract.FormatFromPath(path)
	if !ok {
		format = extract.FormatMOBI
	}
	res, err := extract.New(nil).Extract(extract.Document{Format: format, Name: path, Data: data}, limit)
	if err != nil {
		log.Fatalf("Failed to extract text: %v", err)
	}
	fmt.Printf("Extracted text (first %d bytes):\n%s\n", limit, res.Text)

	fmt.Println("\n✓ Done")
}
