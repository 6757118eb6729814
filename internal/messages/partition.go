package messages

// Partition scheme messages.
const (
	// PartitionNoScheme is the error text when no partition scheme was supplied.
	PartitionNoScheme              = "no partitions specified"
	PartitionMultipleRoots         = "custom partition scheme mounts more than one partition at /"
	PartitionDiskRequired          = "full-disk scheme requires a disk"
	PartitionDeviceRequiredFmt     = "partition %q requires a device"
	PartitionFilesystemRequiredFmt = "partition %q is marked for formatting but has no filesystem"
	PartitionMountpointNotAbsFmt   = "partition %q mountpoint %q must be absolute"
	PartitionUnknownKindFmt        = "unknown partition scheme kind %v"
	PartitionWireVariantCountFmt   = "partition scheme must have exactly one variant, got %d"
	PartitionWireDecodeFmt         = "decode %s partition scheme: %w"
	PartitionWireUnknownVariantFmt = "unknown partition scheme variant %q"
	PartitionFileBothVariants      = "partitions: set either full_disk or custom, not both"
	PartitionFileNoVariant         = "partitions: set full_disk or at least one custom partition"
)
