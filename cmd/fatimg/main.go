// Command fatimg is a thin CLI over a FAT32 disk image file. It is a
// demonstration consumer of the fat32 package, not part of the engine:
// it just does host file I/O and calls into fat32.VolRO/VolRW.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ShHaWkK/the-heap/fat32"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "fatimg",
		Short: "inspect and edit a FAT32 image file",
	}
	root.AddCommand(lsCmd(), catCmd(), putCmd())
	return root
}

func lsCmd() *cobra.Command {
	return &cobra.Command{
		Use:          "ls <image> [path]",
		Short:        "list a directory in the image",
		Args:         cobra.RangeArgs(1, 2),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/"
			if len(args) == 2 {
				path = args[1]
			}
			disk, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			vol, err := fat32.NewVolRO(disk)
			if err != nil {
				return err
			}
			entries, err := vol.ListDirPath(path)
			if err != nil {
				return err
			}
			for _, e := range entries {
				kind := "FILE"
				if e.IsDir() {
					kind = "DIR "
				}
				fmt.Printf("%s  %8d  %s\n", kind, e.Size, e.Name)
			}
			return nil
		},
	}
}

func catCmd() *cobra.Command {
	return &cobra.Command{
		Use:          "cat <image> <path>",
		Short:        "print a file's contents",
		Args:         cobra.ExactArgs(2),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			disk, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			vol, err := fat32.NewVolRO(disk)
			if err != nil {
				return err
			}
			data, err := vol.ReadFileByPath(args[1])
			if err != nil {
				return err
			}
			if data == nil {
				return fmt.Errorf("%s: %w", args[1], fat32.PathNotFound)
			}
			_, err = os.Stdout.Write(data)
			return err
		},
	}
}

func putCmd() *cobra.Command {
	return &cobra.Command{
		Use:          "put <image> <src-file> <dest-path>",
		Short:        "write a host file into the image",
		Args:         cobra.ExactArgs(3),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			imagePath, srcPath, destPath := args[0], args[1], args[2]

			disk, err := os.ReadFile(imagePath)
			if err != nil {
				return err
			}
			content, err := os.ReadFile(srcPath)
			if err != nil {
				return err
			}

			vol, err := fat32.NewVolRW(disk)
			if err != nil {
				return err
			}
			if err := vol.WriteFileByPath(destPath, content); err != nil {
				return err
			}
			return os.WriteFile(imagePath, disk, 0o644)
		},
	}
}
