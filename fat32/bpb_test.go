package fat32

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseBPBTooSmall(t *testing.T) {
	_, fe := parseBPB(make([]byte, 100))
	require.Equal(t, BufferTooSmall, fe)
}

func TestParseBPBRejectsZeroFields(t *testing.T) {
	base := scenarioImage(1)

	// Zero out bytes_per_sector.
	disk := append([]byte(nil), base...)
	disk[bpbBytsPerSec] = 0
	disk[bpbBytsPerSec+1] = 0
	_, fe := parseBPB(disk)
	require.Equal(t, NotFat32, fe)
}

func TestParseBPBValid(t *testing.T) {
	disk := scenarioImage(1)
	p, fe := parseBPB(disk)
	require.Equal(t, errOK, fe)
	require.EqualValues(t, 512, p.bytesPerSector)
	require.EqualValues(t, 1, p.sectorsPerClus)
	require.EqualValues(t, 2, p.rootCluster)
	require.Equal(t, 512, p.clusterSize())
}
