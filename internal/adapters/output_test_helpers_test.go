package adapters

import "tinyprotocol/internal/types"

func intPtr(v int) *int {
	return &v
}

func sampleTable() types.MappingTable {
	return types.MappingTable{
		Versions: []types.VersionEntry{{ID: "1.16.5", Protocol: 754}, {ID: "1.17", Protocol: 755}},
		Classes: []types.ClassEntry{
			{
				Name:     "net/minecraft/world/entity/Entity",
				Mappings: "net/minecraft/server/Entity=754,755",
				Offset:   0,
				Size:     2,
				Rows: []types.VersionRow{
					{Version: "1.16.5", Protocol: 754, Obfuscated: "aqa", Runtime: "net/minecraft/server/Entity"},
					{Version: "1.17", Protocol: 755, Obfuscated: "atg", Runtime: "net/minecraft/server/Entity"},
				},
				Fields: []types.MemberEntry{
					{Name: "id", Descriptor: "I", Type: "int", Mappings: "id=754,755", Size: 2},
				},
				Methods: []types.MemberEntry{
					{Name: "tick", Descriptor: "()V", Mappings: "tick=755", Min: intPtr(755), Offset: 1, Size: 1},
				},
			},
		},
	}
}
