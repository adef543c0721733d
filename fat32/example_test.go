package fat32_test

import (
	"fmt"

	"github.com/ShHaWkK/the-heap/fat32"
)

func Example() {
	disk := make([]byte, 512*10)
	// A real caller loads this from a disk image; here we just need a
	// valid-looking BPB to construct the view.
	disk[11], disk[12] = 0, 2 // bytes_per_sector = 512
	disk[13] = 1              // sectors_per_cluster
	disk[14], disk[15] = 1, 0 // reserved_sectors = 1
	disk[16] = 1              // num_fats
	disk[36] = 1              // sectors_per_fat
	disk[44] = 2              // root_cluster

	// Mark the root directory's own cluster as end-of-chain in the FAT so
	// it is never mistaken for a free cluster during allocation.
	fatEntryForRoot := 512 + 2*4
	disk[fatEntryForRoot], disk[fatEntryForRoot+1] = 0xFF, 0xFF
	disk[fatEntryForRoot+2], disk[fatEntryForRoot+3] = 0xFF, 0x0F

	vol, err := fat32.NewVolRW(disk)
	if err != nil {
		fmt.Println(err)
		return
	}
	if err := vol.WriteFileByPath("/HELLO.TXT", []byte("hi")); err != nil {
		fmt.Println(err)
		return
	}
	data, err := vol.AsReadOnly().ReadFileByPath("/HELLO.TXT")
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(string(data))
	// Output:
	// hi
}
